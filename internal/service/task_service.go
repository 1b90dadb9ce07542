package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// RepositoryProvider hands out the task repository backing the service.
// The repository is constructed lazily, so obtaining it can fail; the
// service surfaces that as a backend-unavailable error per operation
// instead of failing at startup.
type RepositoryProvider interface {
	// Get returns the task repository, constructing it if necessary.
	Get(ctx context.Context) (store.TaskRepository, error)
}

// TaskService provides task management operations.
type TaskService interface {
	// CreateTask validates and stores a new task, returning it with its
	// assigned ID and creation timestamp.
	CreateTask(ctx context.Context, title string, description *string) (*domain.Task, error)

	// ListTasks retrieves every task, ordered by ascending ID.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// UpdateTask applies the non-nil fields of the update to an existing
	// task and returns the updated task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateTask(ctx context.Context, id int64, update store.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	DeleteTask(ctx context.Context, id int64) error
}

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "delete_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It returns known sentinel errors directly without wrapping.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) {
		return ErrTaskNotFound
	}

	// If not a sentinel to be returned directly, wrap it
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repos  RepositoryProvider
	logger *slog.Logger
}

// NewTaskService creates a new TaskService backed by the provider's
// repository. It returns an error if the provider is nil.
// If logger is nil, a default logger is used.
func NewTaskService(repos RepositoryProvider, log *slog.Logger) (TaskService, error) {
	if repos == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "repository provider cannot be nil",
		}
	}

	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		repos:  repos,
		logger: log.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask validates and stores a new task.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	title string,
	description *string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(title, description)
	if err != nil {
		log.Warn("rejected invalid task",
			"error", err)
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}

	repo, err := s.repos.Get(ctx)
	if err != nil {
		log.Error("task repository unavailable",
			"error", err)
		return nil, NewTaskServiceError("create_task", "repository unavailable", err)
	}

	created, err := repo.Create(ctx, task)
	if err != nil {
		log.Error("failed to create task",
			"error", err)
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		"task_id", created.ID)
	return created, nil
}

// ListTasks retrieves every task.
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	repo, err := s.repos.Get(ctx)
	if err != nil {
		log.Error("task repository unavailable",
			"error", err)
		return nil, NewTaskServiceError("list_tasks", "repository unavailable", err)
	}

	tasks, err := repo.GetAll(ctx)
	if err != nil {
		log.Error("failed to list tasks",
			"error", err)
		return nil, NewTaskServiceError("list_tasks", "failed to retrieve tasks", err)
	}

	log.Debug("listed tasks",
		"count", len(tasks))
	return tasks, nil
}

// GetTask retrieves a task by its ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	repo, err := s.repos.Get(ctx)
	if err != nil {
		log.Error("task repository unavailable",
			"error", err)
		return nil, NewTaskServiceError("get_task", "repository unavailable", err)
	}

	task, err := repo.GetByID(ctx, id)
	if err != nil {
		log.Error("failed to retrieve task",
			"error", err,
			"task_id", id)
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	if task == nil {
		log.Debug("task not found",
			"task_id", id)
		return nil, ErrTaskNotFound
	}

	log.Debug("retrieved task",
		"task_id", id)
	return task, nil
}

// UpdateTask applies a partial update to an existing task.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	repo, err := s.repos.Get(ctx)
	if err != nil {
		log.Error("task repository unavailable",
			"error", err)
		return nil, NewTaskServiceError("update_task", "repository unavailable", err)
	}

	task, err := repo.Update(ctx, id, update)
	if err != nil {
		log.Error("failed to update task",
			"error", err,
			"task_id", id)
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}
	if task == nil {
		log.Debug("task not found for update",
			"task_id", id)
		return nil, ErrTaskNotFound
	}

	log.Info("task updated",
		"task_id", id)
	return task, nil
}

// DeleteTask removes a task by its ID.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	repo, err := s.repos.Get(ctx)
	if err != nil {
		log.Error("task repository unavailable",
			"error", err)
		return NewTaskServiceError("delete_task", "repository unavailable", err)
	}

	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete task",
			"error", err,
			"task_id", id)
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}
	if !deleted {
		log.Debug("task not found for deletion",
			"task_id", id)
		return ErrTaskNotFound
	}

	log.Info("task deleted",
		"task_id", id)
	return nil
}
