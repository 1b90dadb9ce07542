// Package mysql implements the task repository contract against a MySQL
// server. Unlike the PostgreSQL backend, construction waits for the
// server to become reachable with a bounded, fixed-delay retry loop,
// which absorbs the window where a freshly started database container
// is not accepting connections yet.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
	"github.com/jvillar/taskdeck-api/internal/redact"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// pingTimeout bounds each individual connection attempt.
const pingTimeout = 5 * time.Second

const schemaTasks = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGINT AUTO_INCREMENT PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  DATETIME(6) NOT NULL
)`

// TaskStore implements the store.TaskRepository interface using a MySQL
// database as the storage backend.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger

	// Guards the one-time schema creation; the flag is only set once
	// the DDL has succeeded so a failed attempt is retried.
	initMu      sync.Mutex
	initialized atomic.Bool
}

// NewTaskStore creates a new MySQL implementation of the TaskRepository
// interface. It pings the server until it answers, making up to
// connectAttempts attempts with a fixed connectDelay between them, and
// fails with a backend-unavailable error once the attempts are spent.
// Cancelling ctx aborts the wait immediately. Once connected, later
// failures are not retried and surface per operation.
// If logger is nil, a default logger will be used.
func NewTaskStore(
	ctx context.Context,
	dsn string,
	connectAttempts int,
	connectDelay time.Duration,
	logger *slog.Logger,
) (*TaskStore, error) {
	if connectAttempts < 1 {
		connectAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "mysql_task_store"))

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "open", err)
	}

	if err := connectWithRetry(ctx, db, connectAttempts, connectDelay, log); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database handle", slog.String("error", closeErr.Error()))
		}
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &TaskStore{
		db:     db,
		logger: log,
	}, nil
}

// connectWithRetry pings the server once per attempt, waiting a fixed
// delay between attempts, until the server answers or the attempts are
// spent.
func connectWithRetry(
	ctx context.Context,
	db *sql.DB,
	attempts int,
	delay time.Duration,
	log *slog.Logger,
) error {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := db.PingContext(pingCtx)
		cancel()

		if err == nil {
			log.Info("connected to mysql",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts))
			return nil
		}
		lastErr = err

		// Give up immediately when the caller cancelled; the remaining
		// attempts are only meant for an unresponsive server.
		if ctx.Err() != nil {
			return store.NewStoreError(store.ErrBackendUnavailable, "task", "connect", ctx.Err())
		}

		if attempt == attempts {
			break
		}

		log.Warn("mysql not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", delay),
			slog.String("error", redact.Error(err)))

		select {
		case <-ctx.Done():
			return store.NewStoreError(store.ErrBackendUnavailable, "task", "connect", ctx.Err())
		case <-time.After(delay):
		}
	}

	return store.NewStoreError(
		store.ErrBackendUnavailable,
		"task",
		"connect",
		fmt.Errorf("no response after %d attempts: %w", attempts, lastErr),
	)
}

// Ensure TaskStore implements store.TaskRepository interface
var _ store.TaskRepository = (*TaskStore)(nil)

// Close closes the underlying connection pool.
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
		task.Description,
		task.Completed,
		task.CreatedAt,
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
			log.Debug("task not found", slog.Int64("task_id", id))
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
// It applies only the non-nil fields of the update; created_at is never
// part of the SET clause. Returns (nil, nil) if the task does not exist.
func (s *TaskStore) Update(
	ctx context.Context,
	id int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.Title != nil && *update.Title == "" {
		log.Warn("task validation failed during update", slog.Int64("task_id", id))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyTaskTitle)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	if update.Empty() {
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
		log.Debug("task not found for update", slog.Int64("task_id", id))
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
		log.Debug("task not found for delete", slog.Int64("task_id", id))
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
		createdAt   time.Time
	)

	if err := row.Scan(&task.ID, &task.Title, &description, &task.Completed, &createdAt); err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	task.CreatedAt = createdAt.UTC()

	return &task, nil
}
