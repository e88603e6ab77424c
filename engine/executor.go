package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Executor runs independent blocks of a dispatch.
type Executor interface {
	// Run calls task(i) for every i in [0, n) and returns when all calls
	// have returned. Tasks must not panic; the engine recovers inside them.
	Run(n int, task func(i int))
	// Workers reports the degree of parallelism the engine should plan for.
	Workers() int
}

// Serial runs every task on the calling goroutine in index order.
type Serial struct{}

// Run calls task(0..n-1) in order.
func (Serial) Run(n int, task func(i int)) {
	for i := range n {
		task(i)
	}
}

// Workers returns 1.
func (Serial) Workers() int { return 1 }

// GroupExecutor starts one goroutine per task through an errgroup, limited to
// a fixed number of concurrent goroutines.
type GroupExecutor struct {
	limit int
}

// NewGroupExecutor creates a GroupExecutor. If limit <= 0, GOMAXPROCS is used.
func NewGroupExecutor(limit int) *GroupExecutor {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &GroupExecutor{limit: limit}
}

// Run executes the tasks and waits for them.
func (g *GroupExecutor) Run(n int, task func(i int)) {
	var eg errgroup.Group
	eg.SetLimit(g.limit)
	for i := range n {
		eg.Go(func() error {
			task(i)
			return nil
		})
	}
	_ = eg.Wait()
}

// Workers returns the concurrency limit.
func (g *GroupExecutor) Workers() int { return g.limit }
