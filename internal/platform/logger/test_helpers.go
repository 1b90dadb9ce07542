package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer is a goroutine-safe io.Writer that collects log output
// so tests can assert on it. Handlers can be invoked from multiple
// goroutines, so a bare bytes.Buffer is not enough here.
type TestLogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// GetTestLogger returns a debug-level JSON logger writing into a fresh
// capture buffer.
func GetTestLogger(t *testing.T) (*slog.Logger, *TestLogBuffer) {
	t.Helper()

	buf := &TestLogBuffer{}
	log := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	return log, buf
}

// AssertLogContains fails the test when the captured output does not
// contain the given substring.
func AssertLogContains(t *testing.T, buf *TestLogBuffer, content string) {
	t.Helper()

	logs := buf.String()
	if !strings.Contains(logs, content) {
		t.Errorf("expected log output to contain %q\nlogs:\n%s", content, logs)
	}
}
