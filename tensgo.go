package tensgo

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/internal/simd"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// Runtime bundles a buffer pool, a dispatch engine and its executor.
// It is safe for concurrent use.
type Runtime struct {
	pool    *memory.Pool
	engine  *engine.Engine
	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool

	ownedPool *engine.WorkerPool
}

// New creates a Runtime.
func New(optFns ...Option) *Runtime {
	o := applyOptions(optFns)

	poolCfg := memory.Config{
		MaxRetainedBytes: o.maxRetainedBytes,
		Logger:           o.logger.Logger,
	}
	engCfg := engine.Config{
		ParallelThreshold: o.parallelThreshold,
		VectorThreshold:   o.vectorThreshold,
		Strategy:          o.strategy,
		Executor:          o.executor,
		Logger:            o.logger.Logger,
	}
	if _, noop := o.metricsCollector.(NoopMetricsCollector); !noop {
		obs := observer{mc: o.metricsCollector}
		poolCfg.Observer = obs
		engCfg.Observer = obs
	}
	var owned *engine.WorkerPool
	if engCfg.Executor == nil && o.workers > 0 {
		// Left nil, the engine owns a GOMAXPROCS pool; a sized one is ours.
		owned = engine.NewWorkerPool(o.workers)
		engCfg.Executor = owned
	}

	pool := memory.NewPool(poolCfg)
	engCfg.Pool = pool

	rt := &Runtime{
		pool:      pool,
		engine:    engine.New(engCfg),
		logger:    o.logger,
		metrics:   o.metricsCollector,
		ownedPool: owned,
	}

	rt.logger.Info("runtime created",
		"isa", simd.ActiveISA().String(),
		"workers", rt.engine.Executor().Workers(),
	)
	return rt
}

// Engine returns the dispatch engine.
func (rt *Runtime) Engine() *engine.Engine { return rt.engine }

// Pool returns the buffer pool.
func (rt *Runtime) Pool() *memory.Pool { return rt.pool }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *Logger { return rt.logger }

// Metrics returns the configured metrics collector.
func (rt *Runtime) Metrics() MetricsCollector { return rt.metrics }

// ISA returns the instruction set the lane width is derived from.
func (rt *Runtime) ISA() string { return simd.ActiveISA().String() }

// LaneWidth returns the number of elements of kind per vector register.
func (rt *Runtime) LaneWidth(kind dtype.Kind) int { return rt.engine.LaneWidth(kind) }

// Stats returns a snapshot of pool usage.
func (rt *Runtime) Stats() memory.Stats { return rt.pool.Stats() }

// LogStats logs a pool usage snapshot at info level.
func (rt *Runtime) LogStats(ctx context.Context) {
	rt.logger.LogPoolStats(ctx, rt.pool.Stats())
}

// PushLayer opens a lifetime layer and returns the new depth. Segments
// acquired while it is the innermost layer are released by the matching
// PopLayer if still alive.
func (rt *Runtime) PushLayer() int {
	depth := rt.pool.PushLayer()
	rt.logger.LogLayer(context.Background(), depth, -1)
	return depth
}

// PopLayer closes the innermost layer and returns how many segments it
// released. It returns ErrLayerUnderflow if no layer is open.
func (rt *Runtime) PopLayer() (released int, err error) {
	defer recoverError(&err)
	released = rt.pool.PopLayer()
	rt.logger.LogLayer(context.Background(), rt.pool.LayerDepth(), released)
	return released, nil
}

// Scope runs fn inside a fresh lifetime layer.
func (rt *Runtime) Scope(fn func() error) error {
	rt.PushLayer()
	defer func() { _, _ = rt.PopLayer() }()
	return fn()
}

// Close shuts down a runtime-owned executor and drops idle buffers.
// Segments still alive stay valid and are discarded when released.
func (rt *Runtime) Close() error {
	if !rt.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := rt.engine.Close()
	if rt.ownedPool != nil {
		rt.ownedPool.Close()
		rt.logger.Debug("executor shut down", "workers", rt.ownedPool.Workers())
	}
	if perr := rt.pool.Close(); err == nil {
		err = perr
	}
	return err
}

// AcquireSegment returns a zeroed pooled segment of n elements holding one
// reference.
func AcquireSegment[T dtype.Number](rt *Runtime, n int) (*segment.Owned[T], error) {
	s, err := segment.Acquire[T](rt.pool, n)
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}

// WrapSegment returns a strided view over base. Unlike segment.Wrap it
// reports a view that does not fit as *ErrInvalidView instead of panicking.
func WrapSegment[T dtype.Number](base segment.Segment[T], offset, stride, length int) (w *segment.Wrapper[T], err error) {
	defer recoverError(&err)
	return segment.Wrap(base, offset, stride, length), nil
}
