package memory

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/store"
	"github.com/jvillar/taskdeck-api/internal/store/storetest"
)

func newTestStore(t *testing.T) store.TaskRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewTaskStore(logger)
}

func TestTaskStore_Contract(t *testing.T) {
	storetest.TestTaskRepository(t, newTestStore)
}

func TestTaskStore_ReturnsCopies(t *testing.T) {
	repo := NewTaskStore(nil)
	ctx := context.Background()

	desc := "original"
	task, err := domain.NewTask("Buy bread", &desc)
	require.NoError(t, err)

	created, err := repo.Create(ctx, task)
	require.NoError(t, err)

	// Mutating the returned task must not leak into the store
	created.Title = "mutated"
	*created.Description = "mutated"

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Buy bread", got.Title)
	assert.Equal(t, "original", *got.Description)

	// Mutating the input after create must not leak either
	task.Title = "mutated again"
	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", got.Title)

	// GetAll results are detached as well
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	all[0].Completed = true

	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestTaskStore_ConcurrentCreates(t *testing.T) {
	repo := NewTaskStore(nil)
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	ids := make(chan int64, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := domain.NewTask("Buy bread", nil)
			if err != nil {
				t.Error(err)
				return
			}
			created, err := repo.Create(ctx, task)
			if err != nil {
				t.Error(err)
				return
			}
			ids <- created.ID
		}()
	}

	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, goroutines)
	for id := range ids {
		assert.False(t, seen[id], "ID %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)

	tasks, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, goroutines)
}
