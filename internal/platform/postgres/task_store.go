package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
	"github.com/jvillar/taskdeck-api/internal/store"
)

const schemaTasks = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL
)`

// TaskStore implements the store.TaskRepository interface using a
// PostgreSQL database as the storage backend.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger

	// Guards the one-time schema creation; the flag is only set once
	// the DDL has succeeded so a failed attempt is retried.
	initMu      sync.Mutex
	initialized atomic.Bool
}

// NewTaskStore creates a new PostgreSQL implementation of the
// TaskRepository interface connecting with the given DSN. Opening the
// pool is lazy: no connection is attempted here, and an unreachable
// server is reported by the first operation.
// If logger is nil, a default logger will be used.
func NewTaskStore(dsn string, logger *slog.Logger) (*TaskStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, store.NewStoreError(store.ErrBackendUnavailable, "task", "open", err)
	}

	// Pool defaults sized for a small CRUD service
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_task_store")),
	}, nil
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
		return mapError("init schema", err)
	}

	s.initialized.Store(true)
	s.logger.Debug("tasks schema ready")
	return nil
}

// Create implements store.TaskRepository.Create
// It saves a new task to the database, letting the sequence assign the ID.
// Returns an error wrapping store.ErrInvalidEntity if the data is invalid.
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
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		task.CreatedAt,
	).Scan(&id)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, mapError("create", err)
	}

	stored := task.Clone()
	stored.ID = id

	log.Debug("task created", slog.Int64("task_id", id))
	return stored, nil
}

// GetAll implements store.TaskRepository.GetAll
// It retrieves all tasks ordered by ascending ID.
// Returns an empty slice if no tasks exist.
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
		return nil, mapError("get all", err)
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
			return nil, mapError("get all", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError("get all", err)
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
		WHERE id = $1
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
		return nil, mapError("get by id", err)
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
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", set, len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, mapError("update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, mapError("update", err)
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

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, mapError("delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, mapError("delete", err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.Int64("task_id", id))
		return false, nil
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return true, nil
}

// buildUpdateSet assembles the SET clause with positional placeholders
// for the non-nil update fields.
func buildUpdateSet(update store.TaskUpdate) (string, []any) {
	var (
		set  string
		args []any
	)

	appendClause := func(column string, arg any) {
		if set != "" {
			set += ", "
		}
		args = append(args, arg)
		set += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if update.Title != nil {
		appendClause("title", *update.Title)
	}
	if update.Description != nil {
		appendClause("description", *update.Description)
	}
	if update.Completed != nil {
		appendClause("completed", *update.Completed)
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
