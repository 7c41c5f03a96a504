// Package executor implements the background task-submission contract
// IVF cluster training runs on: a small worker pool
// draining a shared queue, with results delivered through a Future.
// The original's lock-free hazard-pointer MPMC queue is replaced here
// by a buffered Go channel, the idiomatic (and, per the governing
// concurrency model, an explicitly acceptable) substitute.
package executor

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type task func()

// Executor runs submitted tasks on a fixed pool of worker goroutines.
type Executor struct {
	tasks   chan task
	wg      sync.WaitGroup
	logger  *zap.Logger
	stopped int32
}

// New starts an Executor with the given number of workers (at least
// one). A nil logger defaults to a no-op logger.
func New(workers int, logger *zap.Logger) *Executor {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		tasks:  make(chan task, workers*4),
		logger: logger,
	}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.loop()
	}
	return e
}

func (e *Executor) loop() {
	defer e.wg.Done()
	for t := range e.tasks {
		t()
	}
}

// Shutdown stops accepting new work, waits for queued tasks to drain,
// and joins all workers. Calling Shutdown more than once is a no-op.
func (e *Executor) Shutdown() {
	if !atomic.CompareAndSwapInt32(&e.stopped, 0, 1) {
		return
	}
	close(e.tasks)
	e.wg.Wait()
}

// Future is the result of a task submitted via Submit, readable once
// via Get (which blocks until the task completes).
type Future[R any] struct {
	done   chan struct{}
	result R
	err    error
}

// Get blocks until the task backing f has completed and returns its
// result and error.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.result, f.err
}

// Submit schedules fn to run on e's worker pool and returns a Future
// for its result. A failing task is logged at Warn level; the error is
// still returned to the Future's caller via Get.
func Submit[R any](e *Executor, fn func() (R, error)) *Future[R] {
	fut := &Future[R]{done: make(chan struct{})}
	e.tasks <- func() {
		defer close(fut.done)
		result, err := fn()
		fut.result = result
		fut.err = err
		if err != nil {
			e.logger.Warn("executor: task failed", zap.Error(err))
		}
	}
	return fut
}
