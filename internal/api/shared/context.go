package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for this package's context keys, keeping them
// distinct from keys defined elsewhere.
type ContextKey string

// TraceIDKey holds the per-request trace ID.
const TraceIDKey ContextKey = "traceID"

// SetTraceID returns a context carrying a freshly generated trace ID,
// used to correlate log lines and error responses for one request.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, uuid.NewString())
}

// GetTraceID returns the context's trace ID, or "" when it has none.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}
