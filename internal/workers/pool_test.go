package workers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTask implements the Task interface for testing.
type MockTask struct {
	id       string
	taskType string
	duration time.Duration
	err      error
	executed int32
	started  chan struct{}
	release  chan struct{}
}

func NewMockTask(id, taskType string, duration time.Duration, err error) *MockTask {
	return &MockTask{
		id:       id,
		taskType: taskType,
		duration: duration,
		err:      err,
	}
}

// NewBlockingTask creates a task that signals on start and blocks until
// released, for deterministic queue tests.
func NewBlockingTask(id string) *MockTask {
	return &MockTask{
		id:       id,
		taskType: "test",
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (m *MockTask) Execute(ctx context.Context) error {
	atomic.AddInt32(&m.executed, 1)

	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.duration > 0 {
		select {
		case <-time.After(m.duration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

func (m *MockTask) ID() string {
	return m.id
}

func (m *MockTask) Type() string {
	return m.taskType
}

func (m *MockTask) ExecutedCount() int32 {
	return atomic.LoadInt32(&m.executed)
}

func TestNewPool(t *testing.T) {
	t.Run("creates pool with valid configuration", func(t *testing.T) {
		config := Config{
			Size:            5,
			QueueSize:       100,
			MaxRetries:      3,
			RetryDelay:      time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       10,
		}

		pool := New(context.Background(), config)

		assert.NotNil(t, pool)
		assert.Equal(t, config.Size, cap(pool.workers))
		assert.Equal(t, config.QueueSize, cap(pool.tasks))
	})

	t.Run("applies defaults for zero values", func(t *testing.T) {
		pool := New(context.Background(), Config{})

		assert.NotNil(t, pool)
		assert.Equal(t, DefaultConfig().Size, cap(pool.workers))
		assert.Equal(t, DefaultConfig().QueueSize, cap(pool.tasks))
	})

	t.Run("default size matches the scan fan-out default", func(t *testing.T) {
		assert.Equal(t, 8, DefaultConfig().Size)
	})
}

func TestPoolLifecycle(t *testing.T) {
	t.Run("start and shutdown pool successfully", func(t *testing.T) {
		config := Config{
			Size:            2,
			QueueSize:       10,
			MaxRetries:      1,
			RetryDelay:      10 * time.Millisecond,
			ShutdownTimeout: 2 * time.Second,
		}

		pool := New(context.Background(), config)
		pool.Start()

		task := NewMockTask("test-1", "test", 10*time.Millisecond, nil)
		require.NoError(t, pool.Submit(task))

		require.NoError(t, pool.WaitIdle(context.Background()))
		require.NoError(t, pool.Shutdown())

		assert.Equal(t, int32(1), task.ExecutedCount())
	})

	t.Run("handles multiple start calls gracefully", func(t *testing.T) {
		pool := New(context.Background(), Config{Size: 1, QueueSize: 1, ShutdownTimeout: time.Second})

		pool.Start()
		pool.Start()

		assert.NoError(t, pool.Shutdown())
	})

	t.Run("handles multiple shutdown calls gracefully", func(t *testing.T) {
		pool := New(context.Background(), Config{Size: 1, QueueSize: 1, ShutdownTimeout: time.Second})
		pool.Start()

		assert.NoError(t, pool.Shutdown())
		assert.NoError(t, pool.Shutdown())
	})
}

func TestTaskSubmission(t *testing.T) {
	config := Config{
		Size:            3,
		QueueSize:       10,
		MaxRetries:      0,
		ShutdownTimeout: 2 * time.Second,
	}

	pool := New(context.Background(), config)
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	tasks := make([]*MockTask, 5)
	for i := 0; i < 5; i++ {
		tasks[i] = NewMockTask(fmt.Sprintf("task-%d", i), "test", time.Millisecond, nil)
		require.NoError(t, pool.Submit(tasks[i]))
	}

	require.NoError(t, pool.WaitIdle(context.Background()))

	results := pool.Results()
	require.Len(t, results, 5)
	for _, result := range results {
		assert.NoError(t, result.Error)
		assert.Equal(t, "test", result.TaskType)
	}
	for _, task := range tasks {
		assert.Equal(t, int32(1), task.ExecutedCount())
	}
}

func TestTaskFailureRecorded(t *testing.T) {
	config := Config{
		Size:            1,
		QueueSize:       5,
		MaxRetries:      1,
		RetryDelay:      5 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
	}

	pool := New(context.Background(), config)
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	taskErr := errors.New("profile failed")
	task := NewMockTask("failing", "profile", 0, taskErr)
	require.NoError(t, pool.Submit(task))

	require.NoError(t, pool.WaitIdle(context.Background()))

	results := pool.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "failing", results[0].TaskID)
	assert.ErrorIs(t, results[0].Error, taskErr)
	assert.Equal(t, 1, results[0].Retries)
	assert.Equal(t, int32(2), task.ExecutedCount(), "one attempt plus one retry")
}

func TestWaitIdleHonorsContext(t *testing.T) {
	pool := New(context.Background(), Config{Size: 1, QueueSize: 5, ShutdownTimeout: time.Second})
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	task := NewBlockingTask("blocked")
	require.NoError(t, pool.Submit(task))
	<-task.started

	waitCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.WaitIdle(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(task.release)
	require.NoError(t, pool.WaitIdle(context.Background()))
}

func TestCancellationDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := Config{
		Size:            1,
		QueueSize:       10,
		MaxRetries:      0,
		ShutdownTimeout: 2 * time.Second,
	}

	pool := New(ctx, config)
	pool.Start()

	blocker := NewBlockingTask("blocker")
	require.NoError(t, pool.Submit(blocker))
	<-blocker.started

	queued := make([]*MockTask, 3)
	for i := 0; i < 3; i++ {
		queued[i] = NewMockTask(fmt.Sprintf("queued-%d", i), "test", 0, nil)
		require.NoError(t, pool.Submit(queued[i]))
	}

	// Cancel the parent context while tasks are still queued. Every
	// submission must still produce a result.
	cancel()
	require.NoError(t, pool.WaitIdle(context.Background()))

	results := pool.Results()
	require.Len(t, results, 4)

	canceled := 0
	for _, result := range results {
		if errors.Is(result.Error, context.Canceled) {
			canceled++
		}
	}
	assert.GreaterOrEqual(t, canceled, 3, "queued tasks should fail with context.Canceled")

	assert.NoError(t, pool.Shutdown())
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(context.Background(), Config{Size: 1, QueueSize: 1, ShutdownTimeout: time.Second})
	pool.Start()
	require.NoError(t, pool.Shutdown())

	err := pool.Submit(NewMockTask("late", "test", 0, nil))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "shut down")
}

func TestQueueFull(t *testing.T) {
	pool := New(context.Background(), Config{Size: 1, QueueSize: 1, ShutdownTimeout: time.Second})
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	running := NewBlockingTask("running")
	require.NoError(t, pool.Submit(running))
	<-running.started

	// Worker is busy, this one occupies the single queue slot.
	require.NoError(t, pool.Submit(NewMockTask("queued", "test", 0, nil)))

	err := pool.Submit(NewMockTask("rejected", "test", 0, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")

	close(running.release)
	require.NoError(t, pool.WaitIdle(context.Background()))
}

func TestProfileTask(t *testing.T) {
	var gotAddress string
	task := NewProfileTask("profile-1", "192.168.1.10", func(_ context.Context, address string) error {
		gotAddress = address
		return nil
	})

	assert.Equal(t, "profile-1", task.ID())
	assert.Equal(t, "profile", task.Type())
	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, "192.168.1.10", gotAddress)
}

func TestProbeTask(t *testing.T) {
	var gotDevice string
	task := NewProbeTask("probe-1", "device-uuid", func(_ context.Context, deviceID string) error {
		gotDevice = deviceID
		return nil
	})

	assert.Equal(t, "probe-1", task.ID())
	assert.Equal(t, "probe", task.Type())
	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, "device-uuid", gotDevice)
}
