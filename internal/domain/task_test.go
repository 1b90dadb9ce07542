package domain

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid task creation
	desc := "Get a fresh loaf from the bakery"
	task, err := NewTask("Buy bread", &desc)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID != 0 {
		t.Errorf("Expected zero ID before persistence, got %d", task.ID)
	}

	if task.Title != "Buy bread" {
		t.Errorf("Expected title %q, got %q", "Buy bread", task.Title)
	}

	if task.Description == nil || *task.Description != desc {
		t.Errorf("Expected description %q, got %v", desc, task.Description)
	}

	if task.Completed {
		t.Error("Expected new task to not be completed")
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if task.CreatedAt.Location() != time.UTC {
		t.Errorf("Expected CreatedAt in UTC, got %v", task.CreatedAt.Location())
	}

	if !task.CreatedAt.Equal(task.CreatedAt.Truncate(time.Microsecond)) {
		t.Error("Expected CreatedAt truncated to microsecond precision")
	}

	// Test creation without a description
	task, err = NewTask("Walk dog", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Description != nil {
		t.Errorf("Expected nil description, got %v", task.Description)
	}

	// Test invalid title
	_, err = NewTask("", nil)
	if err != ErrEmptyTaskTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	validTask := Task{
		ID:        1,
		Title:     "Buy bread",
		CreatedAt: time.Now().UTC(),
	}

	// Test valid task
	if err := validTask.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test empty title
	invalidTask := validTask
	invalidTask.Title = ""
	if err := invalidTask.Validate(); err != ErrEmptyTaskTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}

	// Test negative ID
	invalidTask = validTask
	invalidTask.ID = -1
	if err := invalidTask.Validate(); err != ErrNegativeTaskID {
		t.Errorf("Expected error %v, got %v", ErrNegativeTaskID, err)
	}
}

func TestMarkComplete(t *testing.T) {
	t.Parallel() // Enable parallel execution
	task := Task{
		ID:        1,
		Title:     "Buy bread",
		CreatedAt: time.Now().UTC(),
	}

	task.MarkComplete()
	if !task.Completed {
		t.Error("Expected task to be completed after MarkComplete")
	}

	// Marking an already completed task is a no-op
	task.MarkComplete()
	if !task.Completed {
		t.Error("Expected task to stay completed after repeated MarkComplete")
	}

	task.MarkIncomplete()
	if task.Completed {
		t.Error("Expected task to not be completed after MarkIncomplete")
	}

	task.MarkIncomplete()
	if task.Completed {
		t.Error("Expected task to stay pending after repeated MarkIncomplete")
	}
}

func TestTaskClone(t *testing.T) {
	t.Parallel() // Enable parallel execution
	desc := "original"
	task := &Task{
		ID:          7,
		Title:       "Buy bread",
		Description: &desc,
		Completed:   true,
		CreatedAt:   time.Now().UTC(),
	}

	clone := task.Clone()

	if clone == task {
		t.Fatal("Expected clone to be a distinct instance")
	}

	if clone.ID != task.ID || clone.Title != task.Title ||
		clone.Completed != task.Completed || !clone.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("Expected clone fields to match original, got %+v", clone)
	}

	if clone.Description == task.Description {
		t.Error("Expected Description pointer to be duplicated, not shared")
	}

	// Mutating the clone must not affect the original
	*clone.Description = "changed"
	if *task.Description != "original" {
		t.Errorf("Expected original description unchanged, got %q", *task.Description)
	}

	// Nil description clones to nil
	task.Description = nil
	if clone := task.Clone(); clone.Description != nil {
		t.Errorf("Expected nil description in clone, got %v", clone.Description)
	}
}
