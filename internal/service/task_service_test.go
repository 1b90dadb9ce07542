package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository is a mock implementation of store.TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	created, _ := args.Get(0).(*domain.Task)
	return created, args.Error(1)
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) Update(
	ctx context.Context,
	id int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	args := m.Called(ctx, id, update)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// staticProvider hands out a fixed repository or a fixed error.
type staticProvider struct {
	repo store.TaskRepository
	err  error
}

func (p *staticProvider) Get(ctx context.Context) (store.TaskRepository, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.repo, nil
}

func newServiceWithRepo(t *testing.T, repo store.TaskRepository) TaskService {
	t.Helper()

	svc, err := NewTaskService(&staticProvider{repo: repo}, slog.Default())
	require.NoError(t, err)
	return svc
}

func sampleTask(id int64, title string) *domain.Task {
	return &domain.Task{
		ID:        id,
		Title:     title,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestNewTaskService(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		svc, err := NewTaskService(nil, slog.Default())
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.ErrorContains(t, err, "repository provider cannot be nil")
	})

	t.Run("nil logger uses default", func(t *testing.T) {
		svc, err := NewTaskService(&staticProvider{repo: &MockTaskRepository{}}, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &MockTaskRepository{}
		created := sampleTask(1, "Buy bread")

		repo.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "Buy bread" && !task.Completed && task.ID == 0
		})).Return(created, nil)

		svc := newServiceWithRepo(t, repo)

		got, err := svc.CreateTask(ctx, "Buy bread", nil)

		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "Buy bread", got.Title)
		repo.AssertExpectations(t)
	})

	t.Run("empty title rejected before the repository is touched", func(t *testing.T) {
		repo := &MockTaskRepository{}
		svc := newServiceWithRepo(t, repo)

		got, err := svc.CreateTask(ctx, "   ", nil)

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repository unavailable", func(t *testing.T) {
		provider := &staticProvider{
			err: store.NewStoreError(store.ErrBackendUnavailable, "task", "open", errors.New("boom")),
		}
		svc, err := NewTaskService(provider, slog.Default())
		require.NoError(t, err)

		got, err := svc.CreateTask(ctx, "Buy bread", nil)

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, store.ErrBackendUnavailable)
	})

	t.Run("create fails", func(t *testing.T) {
		repo := &MockTaskRepository{}
		storeErr := store.NewStoreError(store.ErrBackendUnavailable, "task", "create", errors.New("disk full"))
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, storeErr)

		svc := newServiceWithRepo(t, repo)

		got, err := svc.CreateTask(ctx, "Buy bread", strPtr("two loaves"))

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "failed to save task")
		assert.ErrorIs(t, err, store.ErrBackendUnavailable)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("GetAll", mock.Anything).
			Return([]*domain.Task{sampleTask(1, "Buy bread"), sampleTask(2, "Walk dog")}, nil)

		svc := newServiceWithRepo(t, repo)

		tasks, err := svc.ListTasks(ctx)

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Buy bread", tasks[0].Title)
		assert.Equal(t, "Walk dog", tasks[1].Title)
	})

	t.Run("empty store returns empty slice", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("GetAll", mock.Anything).Return([]*domain.Task{}, nil)

		svc := newServiceWithRepo(t, repo)

		tasks, err := svc.ListTasks(ctx)

		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := &MockTaskRepository{}
		storeErr := store.NewStoreError(store.ErrBackendUnavailable, "task", "get_all", errors.New("boom"))
		repo.On("GetAll", mock.Anything).Return(nil, storeErr)

		svc := newServiceWithRepo(t, repo)

		tasks, err := svc.ListTasks(ctx)

		require.Error(t, err)
		assert.Nil(t, tasks)
		assert.ErrorContains(t, err, "failed to retrieve tasks")
	})
}

func TestTaskService_GetTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("GetByID", mock.Anything, int64(7)).Return(sampleTask(7, "Buy bread"), nil)

		svc := newServiceWithRepo(t, repo)

		task, err := svc.GetTask(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), task.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

		svc := newServiceWithRepo(t, repo)

		task, err := svc.GetTask(ctx, 99)

		require.Error(t, err)
		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("store failure is not reported as missing", func(t *testing.T) {
		repo := &MockTaskRepository{}
		storeErr := store.NewStoreError(store.ErrBackendUnavailable, "task", "get_by_id", errors.New("boom"))
		repo.On("GetByID", mock.Anything, int64(7)).Return(nil, storeErr)

		svc := newServiceWithRepo(t, repo)

		task, err := svc.GetTask(ctx, 7)

		require.Error(t, err)
		assert.Nil(t, task)
		assert.NotErrorIs(t, err, ErrTaskNotFound)
		assert.ErrorIs(t, err, store.ErrBackendUnavailable)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update success", func(t *testing.T) {
		repo := &MockTaskRepository{}
		updated := sampleTask(3, "Buy bread")
		updated.Completed = true

		repo.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(u store.TaskUpdate) bool {
			return u.Title == nil && u.Description == nil && u.Completed != nil && *u.Completed
		})).Return(updated, nil)

		svc := newServiceWithRepo(t, repo)

		task, err := svc.UpdateTask(ctx, 3, store.TaskUpdate{Completed: boolPtr(true)})

		require.NoError(t, err)
		assert.True(t, task.Completed)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("Update", mock.Anything, int64(99), mock.Anything).Return(nil, nil)

		svc := newServiceWithRepo(t, repo)

		task, err := svc.UpdateTask(ctx, 99, store.TaskUpdate{Title: strPtr("renamed")})

		require.Error(t, err)
		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("invalid update", func(t *testing.T) {
		repo := &MockTaskRepository{}
		storeErr := store.NewStoreError(store.ErrInvalidEntity, "task", "update", domain.ErrEmptyTaskTitle)
		repo.On("Update", mock.Anything, int64(3), mock.Anything).Return(nil, storeErr)

		svc := newServiceWithRepo(t, repo)

		task, err := svc.UpdateTask(ctx, 3, store.TaskUpdate{Title: strPtr("")})

		require.Error(t, err)
		assert.Nil(t, task)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("Delete", mock.Anything, int64(5)).Return(true, nil)

		svc := newServiceWithRepo(t, repo)

		err := svc.DeleteTask(ctx, 5)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &MockTaskRepository{}
		repo.On("Delete", mock.Anything, int64(99)).Return(false, nil)

		svc := newServiceWithRepo(t, repo)

		err := svc.DeleteTask(ctx, 99)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("store failure is not reported as missing", func(t *testing.T) {
		repo := &MockTaskRepository{}
		storeErr := store.NewStoreError(store.ErrBackendUnavailable, "task", "delete", errors.New("boom"))
		repo.On("Delete", mock.Anything, int64(5)).Return(false, storeErr)

		svc := newServiceWithRepo(t, repo)

		err := svc.DeleteTask(ctx, 5)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTaskNotFound)
		assert.ErrorIs(t, err, store.ErrBackendUnavailable)
	})
}
