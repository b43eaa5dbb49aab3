// Package taskqueue runs fire-and-forget work on a fixed pool of workers.
//
// Submit never blocks: a task is either enqueued or dropped. Tasks run at
// most once, their errors and panics are logged and swallowed, and nothing
// about the outcome is reported back to the submitter.
package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/itchan-dev/filemsg/backend/internal/metrics"
	"github.com/itchan-dev/filemsg/shared/logger"
)

type Task = func(ctx context.Context) error

type job struct {
	name string
	run  Task
}

type Queue struct {
	jobs    chan job
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a queue with the given number of workers, buffer size and
// per-task timeout. Call Start before tasks are expected to run.
func New(workers, size int, timeout time.Duration) *Queue {
	return &Queue{
		jobs:    make(chan job, size),
		workers: max(1, workers),
		timeout: timeout,
	}
}

// Start launches the workers. Tasks get contexts derived from ctx, so
// cancelling it aborts running tasks.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	q.baseCtx, q.cancel = context.WithCancel(ctx)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	logger.Log.Info("started task queue",
		"component", "taskqueue",
		"workers", q.workers,
		"capacity", cap(q.jobs))
}

// Submit enqueues a task and returns immediately. It reports false when the
// task was dropped because the queue is full or shut down.
func (q *Queue) Submit(name string, task Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.PostProcessingTasks.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case q.jobs <- job{name: name, run: task}:
		metrics.PostProcessingQueueDepth.Inc()
		return true
	default:
		metrics.PostProcessingTasks.WithLabelValues("dropped").Inc()
		logger.Log.Warn("task queue full, dropping task",
			"component", "taskqueue",
			"task", name)
		return false
	}
}

// Shutdown stops intake and waits for queued tasks to finish. When ctx
// expires first, running tasks are cancelled and ctx's error is returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		logger.Log.Info("task queue drained", "component", "taskqueue")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return fmt.Errorf("task queue shutdown: %w", ctx.Err())
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		metrics.PostProcessingQueueDepth.Dec()
		q.runJob(j)
	}
}

func (q *Queue) runJob(j job) {
	ctx, cancel := q.baseCtx, context.CancelFunc(func() {})
	if q.timeout > 0 {
		ctx, cancel = context.WithTimeout(q.baseCtx, q.timeout)
	}
	defer cancel()

	start := time.Now()
	err := safeRun(ctx, j.run)
	elapsed := time.Since(start)

	var p *panicError
	switch {
	case err == nil:
		metrics.PostProcessingTasks.WithLabelValues("ok").Inc()
		logger.Log.Debug("task finished",
			"component", "taskqueue",
			"task", j.name,
			"duration", elapsed)
	case errors.As(err, &p):
		metrics.PostProcessingTasks.WithLabelValues("panic").Inc()
		logger.Log.Error("task panicked",
			"component", "taskqueue",
			"task", j.name,
			"panic", p.value,
			"stack", string(p.stack))
	default:
		metrics.PostProcessingTasks.WithLabelValues("error").Inc()
		logger.Log.Error("task failed",
			"component", "taskqueue",
			"task", j.name,
			"duration", elapsed,
			"error", err)
	}
}

type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return task(ctx)
}
