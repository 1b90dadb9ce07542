package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jvillar/taskdeck-api/internal/api"
	apiMiddleware "github.com/jvillar/taskdeck-api/internal/api/middleware"
	"github.com/jvillar/taskdeck-api/internal/api/shared"
)

const apiVersion = "1.0.0"

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Standard middleware. The trace middleware hands every request a
	// trace ID and a request-scoped logger, so it goes before the routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Create API handlers using the application's services
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	healthHandler := api.NewHealthHandler(app.provider, string(app.provider.Kind()))

	// Register routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)
			r.Get("/{taskID}", taskHandler.GetTask)
			r.Put("/{taskID}", taskHandler.UpdateTask)
			r.Delete("/{taskID}", taskHandler.DeleteTask)
		})

		// Probes
		r.Get("/health", healthHandler.Health)
		r.Get("/health/ready", healthHandler.Ready)
	})

	// Service index so a bare GET / tells callers where the API lives.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
			"name":    "taskdeck-api",
			"version": apiVersion,
			"tasks":   "/api/v1/tasks",
			"health":  "/api/v1/health",
		})
	})

	return r
}
