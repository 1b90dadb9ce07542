package mysql

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvillar/taskdeck-api/internal/store"
	"github.com/jvillar/taskdeck-api/internal/store/storetest"
)

// unreachableDSN points at a port nothing listens on, so every
// connection attempt fails immediately with a refused connection.
const unreachableDSN = "tasks:tasks@tcp(127.0.0.1:1)/tasks?parseTime=true"

func TestNewTaskStore_RetryExhaustion(t *testing.T) {
	const (
		attempts = 3
		delay    = 50 * time.Millisecond
	)

	start := time.Now()
	_, err := NewTaskStore(context.Background(), unreachableDSN, attempts, delay, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "after 3 attempts")

	// Two full delays must pass between the three attempts, and the
	// fixed delay keeps the total wait tightly bounded.
	assert.GreaterOrEqual(t, elapsed, (attempts-1)*delay)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestNewTaskStore_ContextCancelAbortsRetry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewTaskStore(ctx, unreachableDSN, 100, 50*time.Millisecond, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrBackendUnavailable)

	// Far less time than 100 attempts would take, so cancellation won
	assert.Less(t, elapsed, 2*time.Second)
}

func TestNewTaskStore_AttemptFloor(t *testing.T) {
	// A non-positive attempt count still makes a single attempt
	start := time.Now()
	_, err := NewTaskStore(context.Background(), unreachableDSN, 0, time.Second, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
	assert.Less(t, elapsed, time.Second, "a single attempt must not sleep")
}

// newIntegrationStore returns a store against a real MySQL server, or
// skips the test when no test DSN is configured.
func newIntegrationStore(t *testing.T) *TaskStore {
	t.Helper()

	dsn := os.Getenv("TASKDECK_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TASKDECK_TEST_MYSQL_DSN not set; skipping MySQL integration tests")
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("test DSN must include parseTime=true, got %q", dsn)
	}

	repo, err := NewTaskStore(context.Background(), dsn, 3, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})

	ctx := context.Background()
	require.NoError(t, repo.ensureSchema(ctx))
	_, err = repo.db.ExecContext(ctx, "TRUNCATE TABLE tasks")
	require.NoError(t, err)

	return repo
}

func TestTaskStore_Contract(t *testing.T) {
	storetest.TestTaskRepository(t, func(t *testing.T) store.TaskRepository {
		return newIntegrationStore(t)
	})
}
