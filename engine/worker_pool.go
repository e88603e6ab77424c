package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool manages a fixed pool of goroutines for parallel blocks.
// It avoids spawning goroutines on every dispatch.
type WorkerPool struct {
	numWorkers int
	workCh     chan func() // Channel carries work closures
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool // Tracks if pool is closed
	submitMu   sync.RWMutex
}

var _ Executor = (*WorkerPool)(nil)

// NewWorkerPool creates a worker pool with numWorkers goroutines.
// If numWorkers <= 0, runtime.GOMAXPROCS(0) is used.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	wp := &WorkerPool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers*2), // 2x buffer for pipelining
		stopCh:     make(chan struct{}),
	}

	wp.wg.Add(numWorkers)
	for range numWorkers {
		go wp.worker()
	}

	return wp
}

// worker processes work closures from the work channel.
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.stopCh:
			// Drain remaining work before exiting
			for {
				select {
				case workFunc, ok := <-wp.workCh:
					if !ok {
						return
					}
					workFunc()
				default:
					return
				}
			}
		case workFunc, ok := <-wp.workCh:
			if !ok {
				return
			}
			workFunc()
		}
	}
}

// Submit enqueues a task. It returns ErrExecutorClosed after Close and the
// context error if ctx ends before the task is enqueued.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	wp.submitMu.RLock()
	defer wp.submitMu.RUnlock()

	if wp.closed.Load() {
		return ErrExecutorClosed
	}

	select {
	case wp.workCh <- task:
		return nil
	case <-wp.stopCh:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// trySubmit enqueues a task without blocking.
func (wp *WorkerPool) trySubmit(task func()) bool {
	wp.submitMu.RLock()
	defer wp.submitMu.RUnlock()

	if wp.closed.Load() {
		return false
	}

	select {
	case wp.workCh <- task:
		return true
	default:
		return false
	}
}

// Run executes task(0..n-1) and waits for all of them. Tasks that cannot be
// enqueued immediately run on the calling goroutine, so Run never blocks on a
// full queue and still completes after Close. Run must not be called from
// inside a task.
func (wp *WorkerPool) Run(n int, task func(i int)) {
	if n <= 0 {
		return
	}
	if n == 1 {
		task(0)
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	// The caller takes task 0 itself.
	for i := 1; i < n; i++ {
		if !wp.trySubmit(func() {
			defer wg.Done()
			task(i)
		}) {
			task(i)
			wg.Done()
		}
	}
	task(0)
	wg.Done()
	wg.Wait()
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Close shuts down the worker pool gracefully.
func (wp *WorkerPool) Close() {
	if !wp.closed.CompareAndSwap(false, true) {
		return
	}

	wp.submitMu.Lock()
	close(wp.stopCh)
	close(wp.workCh)
	wp.submitMu.Unlock()

	wp.wg.Wait()
}
