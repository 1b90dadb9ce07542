package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrEmptyTaskTitle is returned when a task title is empty.
	// The title is the only required piece of task content.
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")

	// ErrNegativeTaskID is returned when a task carries a negative ID.
	// IDs are assigned by the storage backend and start at 1; zero marks
	// a task that has not been persisted yet.
	ErrNegativeTaskID = errors.New("task ID cannot be negative")
)
