// Package memory provides an in-memory implementation of the task
// repository contract. It is the default backend for fast iteration and
// serves as the reference behavior the other backends are tested against.
// All data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/platform/logger"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// TaskStore implements the store.TaskRepository interface backed by an
// in-process slice guarded by a mutex. IDs come from a counter that only
// ever grows, so an ID is never reused after its task is deleted.
type TaskStore struct {
	mu     sync.Mutex
	tasks  []*domain.Task
	nextID int64
	logger *slog.Logger
}

// NewTaskStore creates a new in-memory implementation of the
// TaskRepository interface. If logger is nil, a default logger is used.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		tasks:  []*domain.Task{},
		nextID: 1,
		logger: logger.With(slog.String("component", "memory_task_store")),
	}
}

// Ensure TaskStore implements store.TaskRepository interface
var _ store.TaskRepository = (*TaskStore)(nil)

// Create implements store.TaskRepository.Create
// It stores a deep copy of the task and assigns the next ID.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := task.Clone()
	stored.ID = s.nextID
	s.nextID++
	s.tasks = append(s.tasks, stored)

	log.Debug("task created",
		slog.Int64("task_id", stored.ID),
		slog.String("title", stored.Title))
	return stored.Clone(), nil
}

// GetAll implements store.TaskRepository.GetAll
// Tasks are returned in ascending ID order, which matches insertion
// order because IDs are assigned monotonically.
func (s *TaskStore) GetAll(ctx context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task.Clone())
	}

	return tasks, nil
}

// GetByID implements store.TaskRepository.GetByID
// Returns (nil, nil) if the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks {
		if task.ID == id {
			return task.Clone(), nil
		}
	}

	return nil, nil
}

// Update implements store.TaskRepository.Update
// Only the non-nil fields of the update are applied; the creation
// timestamp is never touched. Returns (nil, nil) if the task does
// not exist.
func (s *TaskStore) Update(
	ctx context.Context,
	id int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.Title != nil && *update.Title == "" {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyTaskTitle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks {
		if task.ID != id {
			continue
		}

		if update.Title != nil {
			task.Title = *update.Title
		}
		if update.Description != nil {
			desc := *update.Description
			task.Description = &desc
		}
		if update.Completed != nil {
			task.Completed = *update.Completed
		}

		log.Debug("task updated", slog.Int64("task_id", id))
		return task.Clone(), nil
	}

	return nil, nil
}

// Delete implements store.TaskRepository.Delete
// Returns (false, nil) if the task does not exist. The ID counter is
// left untouched, so deleted IDs are never handed out again.
func (s *TaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.tasks {
		if task.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			log.Debug("task deleted", slog.Int64("task_id", id))
			return true, nil
		}
	}

	return false, nil
}
