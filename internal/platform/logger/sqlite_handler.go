package logger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// logSchema creates the table that stores persisted log records. Source and
// context columns are nullable because not every record carries them.
const logSchema = `
CREATE TABLE IF NOT EXISTS logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	source_file TEXT,
	source_line INTEGER,
	source_func TEXT,
	context TEXT,
	error TEXT
);
`

const insertLogSQL = `
INSERT INTO logs (timestamp, level, message, source_file, source_line, source_func, context, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// sinkState holds the database connection shared by every SQLiteHandler
// derived from the same root handler. WithAttrs and WithGroup return new
// handler values, so the connection and its initialization guard live behind
// a shared pointer rather than on the handler itself.
type sinkState struct {
	dbPath string

	mu          sync.Mutex
	db          *sql.DB
	initialized bool

	reportOnce sync.Once
}

// ensure opens the database and creates the logs table on first use, then
// returns the live connection. The connection is handed out under the mutex
// so a concurrent Close cannot leave the caller with a nil handle. The
// initialized flag is only set after the schema statement succeeds, so a
// failed attempt is retried by the next record instead of being cached.
func (s *sinkState) ensure() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return s.db, nil
	}

	if s.db == nil {
		if dir := filepath.Dir(s.dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating log database directory: %w", err)
			}
		}
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening log database: %w", err)
		}
		s.db = db
	}

	if _, err := s.db.Exec(logSchema); err != nil {
		return nil, fmt.Errorf("creating logs table: %w", err)
	}

	s.initialized = true
	return s.db, nil
}

// SQLiteHandler is a slog.Handler that persists every record it receives to a
// SQLite database and then forwards the record to the next handler in the
// chain. Persistence is best-effort: a failing database never fails the log
// call, it only costs the durable copy of the record.
type SQLiteHandler struct {
	state  *sinkState
	next   slog.Handler
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*SQLiteHandler)(nil)

// NewSQLiteHandler creates a handler that persists records to the SQLite
// database at dbPath and forwards them to next. The database file and its
// parent directory are created lazily when the first record arrives.
func NewSQLiteHandler(dbPath string, next slog.Handler) *SQLiteHandler {
	return &SQLiteHandler{
		state: &sinkState{dbPath: dbPath},
		next:  next,
	}
}

// Enabled delegates the level decision to the next handler so the sink never
// changes which records the application emits.
func (h *SQLiteHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle persists the record and then forwards it to the next handler. The
// returned error is the next handler's; persistence failures are reported to
// stderr once and otherwise swallowed.
func (h *SQLiteHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.writeRecord(record); err != nil {
		h.state.reportOnce.Do(func() {
			fmt.Fprintf(os.Stderr,
				"logger: failed to persist log record to %s: %v (further failures will not be reported)\n",
				h.state.dbPath, err)
		})
	}
	return h.next.Handle(ctx, record)
}

// WithAttrs returns a handler that includes attrs in the context column of
// every persisted record. Attribute keys are qualified with the open group
// path at bind time so later records store them under their full dotted name.
func (h *SQLiteHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	prefix := strings.Join(h.groups, ".")
	bound := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	bound = append(bound, h.attrs...)
	for _, a := range attrs {
		if prefix != "" && a.Key != "" {
			a.Key = prefix + "." + a.Key
		}
		bound = append(bound, a)
	}

	return &SQLiteHandler{
		state:  h.state,
		next:   h.next.WithAttrs(attrs),
		attrs:  bound,
		groups: h.groups,
	}
}

// WithGroup returns a handler that qualifies subsequent attribute keys with
// name, mirroring how the JSON handler nests them.
func (h *SQLiteHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)

	return &SQLiteHandler{
		state:  h.state,
		next:   h.next.WithGroup(name),
		attrs:  h.attrs,
		groups: groups,
	}
}

// Close closes the underlying database connection. After Close the handler
// still forwards records, but persistence attempts will reopen the database.
func (h *SQLiteHandler) Close() error {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if h.state.db == nil {
		return nil
	}
	err := h.state.db.Close()
	h.state.db = nil
	h.state.initialized = false
	return err
}

// writeRecord maps a record onto a row in the logs table. Persistence is not
// bound to the caller's context so a cancelled request does not lose its
// final records.
func (h *SQLiteHandler) writeRecord(record slog.Record) error {
	db, err := h.state.ensure()
	if err != nil {
		return err
	}

	fields := make(map[string]any)
	var errText string
	for _, a := range h.attrs {
		collectAttr(fields, "", a, &errText)
	}
	prefix := strings.Join(h.groups, ".")
	record.Attrs(func(a slog.Attr) bool {
		collectAttr(fields, prefix, a, &errText)
		return true
	})

	var contextJSON any
	if len(fields) > 0 {
		data, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encoding log context: %w", err)
		}
		contextJSON = string(data)
	}

	file, line, fn := recordSource(record)

	_, err = db.Exec(insertLogSQL,
		record.Time.UTC().Format(time.RFC3339Nano),
		record.Level.String(),
		record.Message,
		nullString(file),
		nullInt(line),
		nullString(fn),
		contextJSON,
		nullString(errText),
	)
	return err
}

// collectAttr flattens an attribute into fields under its dotted group path.
// An unqualified "error" attribute is lifted out into errText so it lands in
// the dedicated error column instead of the context JSON.
func collectAttr(fields map[string]any, prefix string, a slog.Attr, errText *string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := key
		if a.Key == "" {
			// An inline group contributes its members at the current level.
			groupPrefix = prefix
		}
		for _, ga := range a.Value.Group() {
			collectAttr(fields, groupPrefix, ga, errText)
		}
		return
	}

	if key == "error" {
		if err, ok := a.Value.Any().(error); ok {
			*errText = err.Error()
		} else {
			*errText = a.Value.String()
		}
		return
	}

	fields[key] = attrValue(a.Value)
}

// attrValue converts a slog value into a JSON-encodable representation.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
}

// recordSource resolves the file, line and function that produced the record.
func recordSource(r slog.Record) (file string, line int, fn string) {
	if r.PC == 0 {
		return "", 0, ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	return frame.File, frame.Line, frame.Function
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
