// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Beyond the stdout JSON handler, the package offers two
// things the rest of the application builds on: context helpers (WithLogger, FromContext,
// FromContextOrDefault) that carry a request-scoped logger through call chains, and
// SQLiteHandler, a chaining slog.Handler that persists every record to a SQLite database
// for later inspection.
package logger
