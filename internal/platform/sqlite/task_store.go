// Package sqlite provides a single-file, embedded implementation of the
// task repository contract using the pure Go modernc.org/sqlite driver.
// It is suited for local development and small deployments where running
// a database server is not worth the trouble.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// AUTOINCREMENT keeps SQLite from ever handing out the rowid of a
// deleted task again.
const schemaTasks = `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
)`

// Open creates any missing parent directories for the database file and
// opens a handle to it. No I/O against the file itself happens until
// the first query.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// TaskStore implements the store.TaskRepository interface using a
// single-file SQLite database as the storage backend.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger

	// Schema creation is the only application-level critical section:
	// the atomic flag plus the mutex guarantee exactly one successful
	// initialization even under concurrent first access. The flag is
	// only set on success, so a failed attempt is retried later.
	initMu      sync.Mutex
	initialized atomic.Bool
}

// NewTaskStore creates a new SQLite implementation of the TaskRepository
// interface backed by the database file at path. The schema is created
// lazily on first use. If logger is nil, a default logger is used.
func NewTaskStore(path string, logger *slog.Logger) (*TaskStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := Open(path)
	if err != nil {
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "open", err)
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_task_store")),
	}, nil
}

// Ensure TaskStore implements store.TaskRepository interface
var _ store.TaskRepository = (*TaskStore)(nil)

// Close closes the underlying database handle.
func (s *TaskStore) Close() error {
	return s.db.Close()
}

func (s *TaskStore) ensureSchema(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized.Load() {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, schemaTasks); err != nil {
		return store.NewStoreError(store.ErrBackendUnavailable, "task", "init schema", err)
	}

	s.initialized.Store(true)
	s.logger.Debug("tasks schema ready")
	return nil
}

// Create implements store.TaskRepository.Create
// It saves a new task to the database and assigns the autoincremented ID.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO tasks (title, description, completed, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		descriptionToDB(task.Description),
		task.Completed,
		formatTime(task.CreatedAt),
	)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "create", err)
	}

	stored := task.Clone()
	stored.ID = id

	log.Debug("task created", slog.Int64("task_id", id))
	return stored, nil
}

// GetAll implements store.TaskRepository.GetAll
// It retrieves all tasks ordered by ascending ID.
func (s *TaskStore) GetAll(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, title, description, completed, created_at
		FROM tasks
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "get all", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "get all", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "get all", err)
	}

	// Return empty slice instead of nil if no tasks found
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return tasks, nil
}

// GetByID implements store.TaskRepository.GetByID
// Returns (nil, nil) if the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, title, description, completed, created_at
		FROM tasks
		WHERE id = ?
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "get by id", err)
	}

	return task, nil
}

// Update implements store.TaskRepository.Update
// It applies only the non-nil fields of the update. The created_at
// column is never part of the SET clause. Returns (nil, nil) if the
// task does not exist.
func (s *TaskStore) Update(
	ctx context.Context,
	id int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.Title != nil && *update.Title == "" {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyTaskTitle)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	if update.Empty() {
		// Nothing to apply; report the current state
		return s.GetByID(ctx, id)
	}

	set, args := buildUpdateSet(update)
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, "UPDATE tasks SET "+set+" WHERE id = ?", args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "update", err)
	}

	// If no rows were affected, the task didn't exist
	if rowsAffected == 0 {
		return nil, nil
	}

	log.Debug("task updated", slog.Int64("task_id", id))
	return s.GetByID(ctx, id)
}

// Delete implements store.TaskRepository.Delete
// Returns (false, nil) if the task does not exist.
func (s *TaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.ensureSchema(ctx); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, store.NewStoreError(store.ErrBackendUnavailable, "task", "delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError(store.ErrBackendUnavailable, "task", "delete", err)
	}

	if rowsAffected == 0 {
		return false, nil
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return true, nil
}

// buildUpdateSet assembles the SET clause for the non-nil update fields.
func buildUpdateSet(update store.TaskUpdate) (string, []any) {
	var (
		set  string
		args []any
	)

	appendClause := func(clause string, arg any) {
		if set != "" {
			set += ", "
		}
		set += clause
		args = append(args, arg)
	}

	if update.Title != nil {
		appendClause("title = ?", *update.Title)
	}
	if update.Description != nil {
		appendClause("description = ?", *update.Description)
	}
	if update.Completed != nil {
		appendClause("completed = ?", *update.Completed)
	}

	return set, args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		createdAt   string
	)

	if err := row.Scan(&task.ID, &task.Title, &description, &task.Completed, &createdAt); err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}

	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at value %q: %w", createdAt, err)
	}
	task.CreatedAt = parsed

	return &task, nil
}

func descriptionToDB(description *string) sql.NullString {
	if description == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *description, Valid: true}
}

// formatTime serializes a timestamp for storage as RFC3339 text in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserializes a timestamp stored by formatTime.
func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
