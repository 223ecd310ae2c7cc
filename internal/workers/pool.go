// Package workers provides the bounded worker pool used to fan out
// per-host work inside a scan job. Tasks are fed from a queue, executed
// by a fixed number of workers, and their results are collected into a
// guarded accumulator the job reads back once the pool drains.
package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// Task represents a unit of per-host work executed by a worker.
type Task interface {
	// Execute performs the task and returns an error if it fails.
	Execute(ctx context.Context) error
	// ID returns a unique identifier for the task.
	ID() string
	// Type returns the task type for metrics and logging.
	Type() string
}

// Result represents the outcome of one executed task.
type Result struct {
	TaskID   string
	TaskType string
	Error    error
	Duration time.Duration
	Retries  int
}

// Config holds configuration for the worker pool.
type Config struct {
	// Size is the number of worker goroutines to create.
	Size int
	// QueueSize is the maximum number of tasks that can be queued.
	QueueSize int
	// MaxRetries is the maximum number of retries for failed tasks.
	MaxRetries int
	// RetryDelay is the delay between retries.
	RetryDelay time.Duration
	// ShutdownTimeout is the maximum time to wait for workers to finish.
	ShutdownTimeout time.Duration
	// RateLimit is the maximum number of tasks per second (0 = no limit).
	RateLimit int
}

// DefaultConfig returns a default worker pool configuration.
func DefaultConfig() Config {
	return Config{
		Size:            8,
		QueueSize:       128,
		MaxRetries:      1,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
		RateLimit:       0,
	}
}

// Pool manages a fixed set of worker goroutines executing tasks from a
// bounded queue. Cancellation of the parent context stops execution;
// queued tasks are still drained so every submission produces a result.
type Pool struct {
	config      Config
	tasks       chan Task
	workers     []*worker
	wg          sync.WaitGroup
	pending     sync.WaitGroup
	mu          sync.Mutex
	results     []Result
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	rateLimiter *time.Ticker
	startOnce   sync.Once
	shutdown32  int32 // atomic shutdown flag
}

// worker represents a single worker goroutine.
type worker struct {
	id   int
	pool *Pool
}

// New creates a worker pool bound to the given parent context. A scan
// job creates one pool inside its budget context so that expiry or
// cancellation reaches every task.
func New(ctx context.Context, config Config) *Pool {
	if config.Size <= 0 {
		config.Size = DefaultConfig().Size
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}

	poolCtx, cancel := context.WithCancel(ctx)

	pool := &Pool{
		config:  config,
		tasks:   make(chan Task, config.QueueSize),
		workers: make([]*worker, config.Size),
		ctx:     poolCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if config.RateLimit > 0 {
		interval := time.Second / time.Duration(config.RateLimit)
		pool.rateLimiter = time.NewTicker(interval)
	}

	for i := 0; i < config.Size; i++ {
		pool.workers[i] = &worker{
			id:   i,
			pool: pool,
		}
	}

	return pool
}

// Start begins the worker pool operations.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		logging.Debug("Starting worker pool",
			"worker_count", p.config.Size,
			"queue_size", p.config.QueueSize,
			"rate_limit", p.config.RateLimit)

		for _, w := range p.workers {
			p.wg.Add(1)
			go w.run()
		}

		metrics.Gauge("worker_pool_size", float64(p.config.Size), metrics.Labels{
			"component": "workers",
		})
	})
}

// Submit adds a task to the pool queue. Every accepted task produces
// exactly one entry in Results, even when the pool context is canceled
// before the task runs.
func (p *Pool) Submit(task Task) error {
	if atomic.LoadInt32(&p.shutdown32) == 1 {
		return fmt.Errorf("worker pool is shut down")
	}

	p.pending.Add(1)
	select {
	case p.tasks <- task:
		logging.Debug("Task submitted to worker pool",
			"task_id", task.ID(),
			"task_type", task.Type())
		metrics.Counter("tasks_submitted_total", metrics.Labels{
			"task_type": task.Type(),
		})
		return nil
	case <-p.ctx.Done():
		p.pending.Done()
		return fmt.Errorf("worker pool is shutting down")
	default:
		p.pending.Done()
		return fmt.Errorf("task queue is full")
	}
}

// WaitIdle blocks until every submitted task has produced a result or
// the given context expires.
func (p *Pool) WaitIdle(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns a snapshot of the accumulated task results.
func (p *Pool) Results() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}

// Shutdown gracefully shuts down the worker pool. Queued tasks are
// drained (executing against the canceled context) before workers exit.
func (p *Pool) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&p.shutdown32, 0, 1) {
		// Already shut down
		return nil
	}

	logging.Debug("Shutting down worker pool")

	// Cancel first so queued tasks fail fast, then close the queue so
	// workers drain and exit.
	p.cancel()
	close(p.tasks)

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		logging.Debug("Worker pool shutdown completed")
	case <-time.After(p.config.ShutdownTimeout):
		logging.Warn("Worker pool shutdown timeout, forcing termination")
		<-finished
	}

	if p.rateLimiter != nil {
		p.rateLimiter.Stop()
	}

	close(p.done)
	return nil
}

// Wait blocks until the pool has fully shut down.
func (p *Pool) Wait() {
	<-p.done
}

// record appends a task result to the accumulator.
func (p *Pool) record(result Result) {
	p.mu.Lock()
	p.results = append(p.results, result)
	p.mu.Unlock()
	p.pending.Done()
}

// worker.run executes the worker loop, draining the queue until it is
// closed by Shutdown.
func (w *worker) run() {
	defer w.pool.wg.Done()

	logging.Debug("Worker started", "worker_id", w.id)
	defer logging.Debug("Worker stopped", "worker_id", w.id)

	for task := range w.pool.tasks {
		w.executeTask(task)
	}
}

// executeTask executes a single task with retry logic and records the
// outcome in the accumulator.
func (w *worker) executeTask(task Task) {
	// A canceled pool still accounts for queued tasks.
	if err := w.pool.ctx.Err(); err != nil {
		w.pool.record(Result{
			TaskID:   task.ID(),
			TaskType: task.Type(),
			Error:    err,
		})
		return
	}

	taskTimer := metrics.NewTimer("task_duration_seconds", metrics.Labels{
		"task_type": task.Type(),
		"worker_id": fmt.Sprintf("worker-%d", w.id),
	})
	defer taskTimer.Stop()

	if w.pool.rateLimiter != nil {
		select {
		case <-w.pool.rateLimiter.C:
		case <-w.pool.ctx.Done():
			w.pool.record(Result{
				TaskID:   task.ID(),
				TaskType: task.Type(),
				Error:    w.pool.ctx.Err(),
			})
			return
		}
	}

	var lastErr error
	var retries int

	for attempt := 0; attempt <= w.pool.config.MaxRetries; attempt++ {
		start := time.Now()

		taskCtx, cancel := context.WithCancel(w.pool.ctx)
		err := task.Execute(taskCtx)
		cancel()

		duration := time.Since(start)

		if err == nil {
			w.pool.record(Result{
				TaskID:   task.ID(),
				TaskType: task.Type(),
				Duration: duration,
				Retries:  retries,
			})

			metrics.Counter("tasks_completed_total", metrics.Labels{
				"task_type": task.Type(),
				"status":    "success",
			})

			logging.Debug("Task completed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"duration", duration,
				"worker_id", w.id,
				"retries", retries)
			return
		}

		lastErr = err
		retries = attempt

		// No point retrying once the pool context is gone.
		if w.pool.ctx.Err() != nil {
			break
		}

		if attempt < w.pool.config.MaxRetries {
			logging.Debug("Task failed, retrying",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"attempt", attempt+1,
				"max_retries", w.pool.config.MaxRetries,
				"error", err)

			select {
			case <-time.After(w.pool.config.RetryDelay):
			case <-w.pool.ctx.Done():
			}
		}
	}

	w.pool.record(Result{
		TaskID:   task.ID(),
		TaskType: task.Type(),
		Error:    lastErr,
		Retries:  retries,
	})

	metrics.Counter("tasks_completed_total", metrics.Labels{
		"task_type": task.Type(),
		"status":    "error",
	})

	logging.Debug("Task failed after retries",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"retries", retries,
		"error", lastErr,
		"worker_id", w.id)
}

// ProfileTask implements Task for profiling one responsive address.
type ProfileTask struct {
	id       string
	address  string
	executor func(ctx context.Context, address string) error
}

// NewProfileTask creates a profiling task for an address.
func NewProfileTask(id, address string,
	executor func(ctx context.Context, address string) error) *ProfileTask {
	return &ProfileTask{
		id:       id,
		address:  address,
		executor: executor,
	}
}

// Execute implements the Task interface.
func (t *ProfileTask) Execute(ctx context.Context) error {
	return t.executor(ctx, t.address)
}

// ID implements the Task interface.
func (t *ProfileTask) ID() string {
	return t.id
}

// Type implements the Task interface.
func (t *ProfileTask) Type() string {
	return "profile"
}

// ProbeTask implements Task for evaluating the vulnerability catalog
// against one profiled device.
type ProbeTask struct {
	id       string
	deviceID string
	executor func(ctx context.Context, deviceID string) error
}

// NewProbeTask creates a probe task for a device.
func NewProbeTask(id, deviceID string,
	executor func(ctx context.Context, deviceID string) error) *ProbeTask {
	return &ProbeTask{
		id:       id,
		deviceID: deviceID,
		executor: executor,
	}
}

// Execute implements the Task interface.
func (t *ProbeTask) Execute(ctx context.Context) error {
	return t.executor(ctx, t.deviceID)
}

// ID implements the Task interface.
func (t *ProbeTask) ID() string {
	return t.id
}

// Type implements the Task interface.
func (t *ProbeTask) Type() string {
	return "probe"
}
