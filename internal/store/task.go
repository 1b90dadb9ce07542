package store

import (
	"context"

	"github.com/jvillar/taskdeck-api/internal/domain"
)

// TaskUpdate describes a partial update to a task. A nil field is left
// unchanged; only non-nil fields are applied. The creation timestamp
// can never be updated.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Empty reports whether the update carries no fields at all.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil
}

// TaskRepository defines the interface for task data persistence.
// Every backend implements the same contract so implementations are
// interchangeable; callers must not depend on backend-specific behavior.
//
// Absence is a normal result, never an error: lookups for an ID that
// does not exist return a nil task (or false for Delete) with a nil
// error. Translating absence into a "not found" failure is the
// caller's job.
type TaskRepository interface {
	// Create saves a new task to the store and assigns its ID.
	// It handles domain validation internally.
	// Returns an error wrapping ErrInvalidEntity if the data is invalid.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GetAll retrieves every task, ordered by ascending ID.
	// Returns an empty slice if no tasks exist.
	GetAll(ctx context.Context) ([]*domain.Task, error)

	// GetByID retrieves a task by its unique ID.
	// Returns (nil, nil) if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies the non-nil fields of the update to an existing
	// task and returns the updated task.
	// Returns (nil, nil) if the task does not exist.
	// Returns an error wrapping ErrInvalidEntity if the update is invalid.
	Update(ctx context.Context, id int64, update TaskUpdate) (*domain.Task, error)

	// Delete removes a task by its unique ID.
	// Returns (false, nil) if the task does not exist.
	Delete(ctx context.Context, id int64) (bool, error)
}
