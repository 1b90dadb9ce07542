// Package main implements the entry point for the TaskDeck API server,
// which stores and serves tasks over a JSON HTTP API backed by a
// configurable persistence backend.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jvillar/taskdeck-api/internal/config"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
)

// main wires configuration, logging, persistence, and the HTTP server
// together and then runs until a shutdown signal arrives.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and builds the
// application with its dependencies injected.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, logSink, err := logger.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"addr", cfg.Server.Addr(),
		"backend", cfg.Repository.Backend,
		"log_level", cfg.Logging.Level)

	return newApplication(cfg, appLogger, logSink)
}
