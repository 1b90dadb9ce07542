package logger

import (
	"context"
	"log/slog"
)

// contextKey is a private type used for context value keys to avoid collisions
// with keys defined in other packages.
type contextKey int

// loggerKey is the context key under which the request-scoped logger is stored.
const loggerKey contextKey = iota

// WithLogger returns a new context that carries the provided logger.
// Handlers and middleware use it to attach a request-scoped logger (for
// example one enriched with a trace ID) that downstream code retrieves with
// FromContext or FromContextOrDefault.
//
// It panics if logger is nil; storing a nil logger would turn every
// downstream retrieval into a latent nil dereference.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger.WithLogger: nil logger")
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger stored in the context, if any.
// The second return value reports whether a logger was present.
func FromContext(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	return logger, ok
}

// FromContextOrDefault retrieves the logger stored in the context, falling
// back to the provided default when the context is nil or carries no logger.
// Callers that hold a component-scoped logger pass it as the fallback so that
// log records keep their component attribution outside of request handling.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := FromContext(ctx); ok {
		return logger
	}
	return fallback
}
