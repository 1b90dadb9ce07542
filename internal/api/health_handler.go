package api

import (
	"net/http"

	"github.com/jvillar/taskdeck-api/internal/api/shared"
	"github.com/jvillar/taskdeck-api/internal/service"
)

// HealthResponse is the body returned by the health and readiness endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	provider service.RepositoryProvider
	backend  string
}

// NewHealthHandler creates a new HealthHandler. backend is the configured
// repository backend name, reported by the readiness endpoint.
// It panics if provider is nil.
func NewHealthHandler(provider service.RepositoryProvider, backend string) *HealthHandler {
	if provider == nil {
		panic("provider cannot be nil")
	}
	return &HealthHandler{provider: provider, backend: backend}
}

// Health handles GET /health requests. It reports that the process is up
// without touching the persistence backend.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /health/ready requests. It reports ready only once the task
// repository is reachable, constructing it if that has not happened yet.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.provider.Get(r.Context()); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"Storage backend unavailable", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ready", Backend: h.backend})
}
