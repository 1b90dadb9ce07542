package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jvillar/taskdeck-api/internal/config"
	"github.com/jvillar/taskdeck-api/internal/repository"
	"github.com/jvillar/taskdeck-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a config wired to the in-memory backend, bypassing
// environment loading.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Repository: config.RepositoryConfig{Backend: "memory"},
		Logging:    config.LoggingConfig{Level: "info"},
	}
}

func testAppLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewApplication(t *testing.T) {
	app, err := newApplication(testConfig(), testAppLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, repository.KindMemory, app.provider.Kind())
	assert.NotNil(t, app.taskService)

	// Cleanup with no log sink and an unopened repository is harmless
	app.cleanup()
}

func TestNewApplicationUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Backend = "cassandra"

	_, err := newApplication(cfg, testAppLogger(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnknownBackend)
}
