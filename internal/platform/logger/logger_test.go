package logger

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jvillar/taskdeck-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreDefaultLogger saves the current default logger and restores it when
// the test finishes. Setup installs its logger as the process default, which
// would otherwise leak between tests.
func restoreDefaultLogger(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(original)
	})
}

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		debugEnabled bool
		infoEnabled  bool
		warnEnabled  bool
		errorEnabled bool
	}{
		{"debug_level", "debug", true, true, true, true},
		{"info_level", "info", false, true, true, true},
		{"warn_level", "warn", false, false, true, true},
		{"error_level", "error", false, false, false, true},
		{"uppercase_level", "DEBUG", true, true, true, true},
		{"invalid_level_defaults_to_info", "verbose", false, true, true, true},
		{"empty_level_defaults_to_info", "", false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreDefaultLogger(t)

			logger, sink, err := Setup(config.LoggingConfig{Level: tt.level})
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Nil(t, sink, "no sink expected without a database path")

			ctx := context.Background()
			assert.Equal(t, tt.debugEnabled, logger.Enabled(ctx, slog.LevelDebug), "debug")
			assert.Equal(t, tt.infoEnabled, logger.Enabled(ctx, slog.LevelInfo), "info")
			assert.Equal(t, tt.warnEnabled, logger.Enabled(ctx, slog.LevelWarn), "warn")
			assert.Equal(t, tt.errorEnabled, logger.Enabled(ctx, slog.LevelError), "error")
		})
	}
}

func TestSetupSetsDefaultLogger(t *testing.T) {
	restoreDefaultLogger(t)

	logger, _, err := Setup(config.LoggingConfig{Level: "info"})
	require.NoError(t, err)

	assert.Same(t, logger, slog.Default())
}

func TestSetupWithPersistence(t *testing.T) {
	restoreDefaultLogger(t)

	dbPath := filepath.Join(t.TempDir(), "logs.db")
	logger, sink, err := Setup(config.LoggingConfig{Level: "info", DBPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, sink, "a sink is expected when a database path is configured")

	assert.NoError(t, sink.Close())
}
