// Package repository selects and constructs the persistence backend the
// application stores its tasks in. Every backend satisfies
// store.TaskRepository, so the rest of the application never learns which
// one it is talking to.
package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jvillar/taskdeck-api/internal/config"
	"github.com/jvillar/taskdeck-api/internal/platform/memory"
	"github.com/jvillar/taskdeck-api/internal/platform/mysql"
	"github.com/jvillar/taskdeck-api/internal/platform/postgres"
	"github.com/jvillar/taskdeck-api/internal/platform/sqlite"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// Kind identifies a persistence backend.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
)

// supportedKinds lists every backend ParseKind accepts, in the order they
// are reported in errors.
var supportedKinds = []Kind{KindMemory, KindSQLite, KindPostgres, KindMySQL}

// ParseKind maps a configured backend name onto a Kind. Matching is
// case-insensitive and accepts "postgresql" as an alias for "postgres".
// Unknown names produce an error wrapping store.ErrUnknownBackend that
// names the supported backends.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "memory":
		return KindMemory, nil
	case "sqlite":
		return KindSQLite, nil
	case "postgres", "postgresql":
		return KindPostgres, nil
	case "mysql":
		return KindMySQL, nil
	default:
		return "", fmt.Errorf("%w: %q (supported backends: %s)", store.ErrUnknownBackend, name, kindList())
	}
}

func kindList() string {
	names := make([]string, len(supportedKinds))
	for i, k := range supportedKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Provider constructs the configured TaskRepository on first use and hands
// out the same instance afterwards. Construction failures are not cached,
// so a later Get retries from scratch.
type Provider struct {
	cfg    *config.Config
	logger *slog.Logger
	kind   Kind

	mu   sync.Mutex
	repo store.TaskRepository
}

// NewProvider validates the configured backend name and returns a provider
// for it. The repository itself is not constructed until Get is called, so
// an unreachable database does not fail here.
func NewProvider(cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kind, err := ParseKind(cfg.Repository.Backend)
	if err != nil {
		return nil, err
	}

	return &Provider{
		cfg:    cfg,
		logger: logger,
		kind:   kind,
	}, nil
}

// Kind returns the backend the provider was configured with.
func (p *Provider) Kind() Kind {
	return p.kind
}

// Get returns the task repository, constructing it on first call. Concurrent
// callers block until the first construction finishes and then share its
// result.
func (p *Provider) Get(ctx context.Context) (store.TaskRepository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.repo != nil {
		return p.repo, nil
	}

	repo, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.repo = repo
	return repo, nil
}

// Close releases the constructed repository's underlying resources, if any.
// A repository is constructed again by the next Get.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	closer, ok := p.repo.(io.Closer)
	p.repo = nil
	if !ok {
		return nil
	}
	return closer.Close()
}

func (p *Provider) build(ctx context.Context) (store.TaskRepository, error) {
	p.logger.Info("initializing task repository", slog.String("backend", string(p.kind)))

	switch p.kind {
	case KindMemory:
		return memory.NewTaskStore(p.logger), nil
	case KindSQLite:
		return sqlite.NewTaskStore(p.cfg.SQLite.Path, p.logger)
	case KindPostgres:
		return postgres.NewTaskStore(p.cfg.Postgres.DSN(), p.logger)
	case KindMySQL:
		return mysql.NewTaskStore(ctx,
			p.cfg.MySQL.DSN(),
			p.cfg.MySQL.ConnectAttempts,
			p.cfg.MySQL.ConnectDelay,
			p.logger)
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownBackend, p.kind)
	}
}
