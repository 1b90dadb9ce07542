package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jvillar/taskdeck-api/internal/config"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
	"github.com/jvillar/taskdeck-api/internal/repository"
	"github.com/jvillar/taskdeck-api/internal/service"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Persistence (repositories are built lazily on first use)
	provider *repository.Provider

	// Service interfaces
	taskService service.TaskService

	// Log persistence sink, nil when disabled
	logSink *logger.SQLiteHandler
}

// newApplication creates a new application instance with all dependencies
// initialized. The storage backend itself is not contacted here; the
// provider connects on first use, so startup never blocks on an
// unreachable database.
func newApplication(
	cfg *config.Config,
	log *slog.Logger,
	logSink *logger.SQLiteHandler,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  log,
		logSink: logSink,
	}

	var err error
	app.provider, err = repository.NewProvider(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository provider: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.provider, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	log.Info("application initialized", "backend", app.provider.Kind())
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The log sink
// goes last, after the final log record, so the shutdown itself is persisted.
func (app *application) cleanup() {
	if app.provider != nil {
		if err := app.provider.Close(); err != nil {
			app.logger.Error("error closing repository", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")

	if app.logSink != nil {
		if err := app.logSink.Close(); err != nil {
			app.logger.Error("error closing log sink", "error", err)
		}
	}
}
