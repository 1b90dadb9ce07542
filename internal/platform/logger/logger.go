// Package logger provides structured logging functionality for the application.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/jvillar/taskdeck-api/internal/config"
)

// Setup builds the application logger from configuration and installs it
// as the process-wide default: a JSON handler on stdout at the configured
// level, with the SQLite sink chained in front when cfg.DBPath is set.
//
// The returned sink is nil when persistence is disabled; a non-nil sink
// must be closed by the caller during shutdown.
func Setup(cfg config.LoggingConfig) (*slog.Logger, *SQLiteHandler, error) {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		// Warn through a throwaway text logger; the real one does not
		// exist yet at this point.
		slog.New(slog.NewTextHandler(os.Stderr, nil)).
			Warn("invalid log level configured, using default level",
				"configured_level", cfg.Level,
				"default_level", "info")
		level = slog.LevelInfo
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	// The sink forwards every record it persists, so chaining it in
	// front leaves the stdout output unchanged.
	var sink *SQLiteHandler
	if cfg.DBPath != "" {
		sink = NewSQLiteHandler(cfg.DBPath, handler)
		handler = sink
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, sink, nil
}

// parseLevel maps a level name to its slog level, case-insensitively.
// The second return is false for names it does not recognize.
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
