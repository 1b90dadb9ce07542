package domain

import "time"

// Task represents a single unit of work tracked by the service.
// The ID is assigned by the storage backend on creation; a zero ID
// marks a task that has not been persisted yet.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTask creates a new, unpersisted Task with the given title and
// optional description. The creation timestamp is set in UTC and
// truncated to microsecond precision so it survives a round trip
// through every storage backend unchanged.
// Returns an error if validation fails.
func NewTask(title string, description *string) (*Task, error) {
	task := &Task{
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.ID < 0 {
		return ErrNegativeTaskID
	}

	return nil
}

// MarkComplete marks the task as completed. Calling it on a task that
// is already completed is a no-op.
func (t *Task) MarkComplete() {
	t.Completed = true
}

// MarkIncomplete marks the task as not completed. Calling it on a task
// that is already pending is a no-op.
func (t *Task) MarkIncomplete() {
	t.Completed = false
}

// Clone returns a deep copy of the task. The Description pointer is
// duplicated so callers can mutate the copy freely.
func (t *Task) Clone() *Task {
	clone := *t
	if t.Description != nil {
		desc := *t.Description
		clone.Description = &desc
	}
	return &clone
}
