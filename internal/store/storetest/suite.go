// Package storetest provides a reusable conformance suite for
// store.TaskRepository implementations. Every backend runs the same
// suite so their observable behavior stays interchangeable.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// Factory returns a fresh, empty repository for each subtest. Backends
// that need cleanup should register it with t.Cleanup.
type Factory func(t *testing.T) store.TaskRepository

// TestTaskRepository runs the full repository conformance suite against
// the given factory.
func TestTaskRepository(t *testing.T, newStore Factory) {
	t.Run("create_assigns_ascending_ids", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		first := mustCreate(t, repo, "Buy bread", nil)
		second := mustCreate(t, repo, "Walk dog", nil)

		assert.Positive(t, first.ID)
		assert.Greater(t, second.ID, first.ID)

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "Buy bread", got.Title)
		assert.Nil(t, got.Description)
		assert.False(t, got.Completed)
		assert.True(t, first.CreatedAt.Equal(got.CreatedAt),
			"CreatedAt should round-trip unchanged: stored %v, got %v", first.CreatedAt, got.CreatedAt)
	})

	t.Run("create_preserves_description", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		desc := "Get a fresh loaf from the bakery"
		created := mustCreate(t, repo, "Buy bread", &desc)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.Description)
		assert.Equal(t, desc, *got.Description)
	})

	t.Run("create_rejects_invalid_task", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		_, err := repo.Create(ctx, &domain.Task{Title: ""})
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("get_all_returns_empty_slice", func(t *testing.T) {
		repo := newStore(t)

		tasks, err := repo.GetAll(context.Background())
		require.NoError(t, err)
		require.NotNil(t, tasks, "GetAll must return an empty slice, not nil")
		assert.Empty(t, tasks)
	})

	t.Run("get_all_orders_by_ascending_id", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		titles := []string{"Buy bread", "Walk dog", "Water plants"}
		for _, title := range titles {
			mustCreate(t, repo, title, nil)
		}

		tasks, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, len(titles))
		for i := 1; i < len(tasks); i++ {
			assert.Greater(t, tasks[i].ID, tasks[i-1].ID)
		}
		for i, title := range titles {
			assert.Equal(t, title, tasks[i].Title)
		}
	})

	t.Run("get_by_id_absent_returns_nil_nil", func(t *testing.T) {
		repo := newStore(t)

		task, err := repo.GetByID(context.Background(), 9999)
		require.NoError(t, err, "absence must not be an error")
		assert.Nil(t, task)
	})

	t.Run("update_applies_only_provided_fields", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		desc := "Get a fresh loaf from the bakery"
		created := mustCreate(t, repo, "Buy bread", &desc)

		newTitle := "Buy sourdough"
		updated, err := repo.Update(ctx, created.ID, store.TaskUpdate{Title: &newTitle})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, newTitle, updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, desc, *updated.Description, "description must survive a title-only update")
		assert.False(t, updated.Completed)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "CreatedAt is immutable")

		completed := true
		updated, err = repo.Update(ctx, created.ID, store.TaskUpdate{Completed: &completed})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.Completed)
		assert.Equal(t, newTitle, updated.Title, "title must survive a completed-only update")

		// Completing an already completed task keeps it completed
		updated, err = repo.Update(ctx, created.ID, store.TaskUpdate{Completed: &completed})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.Completed)
	})

	t.Run("update_absent_returns_nil_nil", func(t *testing.T) {
		repo := newStore(t)

		title := "Walk dog"
		task, err := repo.Update(context.Background(), 9999, store.TaskUpdate{Title: &title})
		require.NoError(t, err, "absence must not be an error")
		assert.Nil(t, task)
	})

	t.Run("update_rejects_empty_title", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy bread", nil)

		empty := ""
		_, err := repo.Update(ctx, created.ID, store.TaskUpdate{Title: &empty})
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)

		// The stored task is unchanged after the rejected update
		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Buy bread", got.Title)
	})

	t.Run("delete_removes_task", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		created := mustCreate(t, repo, "Buy bread", nil)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		// Deleting again reports absence, not an error
		deleted, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("delete_absent_returns_false_nil", func(t *testing.T) {
		repo := newStore(t)

		deleted, err := repo.Delete(context.Background(), 9999)
		require.NoError(t, err, "absence must not be an error")
		assert.False(t, deleted)
	})

	t.Run("ids_are_never_reused_after_delete", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		first := mustCreate(t, repo, "Buy bread", nil)
		second := mustCreate(t, repo, "Walk dog", nil)

		deleted, err := repo.Delete(ctx, second.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		third := mustCreate(t, repo, "Water plants", nil)
		assert.Greater(t, third.ID, second.ID,
			"a deleted ID must never be assigned again")
		assert.Greater(t, third.ID, first.ID)
	})
}

func mustCreate(
	t *testing.T,
	repo store.TaskRepository,
	title string,
	description *string,
) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, description)
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	require.NotNil(t, created)
	return created
}
