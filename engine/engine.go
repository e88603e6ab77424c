package engine

import (
	"log/slog"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/simd"
	"github.com/hupe1980/tensgo/memory"
)

const (
	// DefaultParallelThreshold is the element count from which work is split
	// across the executor.
	DefaultParallelThreshold = 4096
	// DefaultVectorThreshold is the element count from which the vector
	// callbacks are used.
	DefaultVectorThreshold = 32768
)

// Strategy is an execution strategy.
type Strategy uint8

const (
	// StrategyAuto selects by element count.
	StrategyAuto Strategy = iota
	// StrategyScalar runs the scalar callback on the calling goroutine.
	StrategyScalar
	// StrategyParallel runs the scalar callback across the executor.
	StrategyParallel
	// StrategyVector runs the vector callback over lane-aligned runs across the executor.
	StrategyVector
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyScalar:
		return "scalar"
	case StrategyParallel:
		return "parallel"
	case StrategyVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Config configures an Engine. The zero value is usable.
type Config struct {
	// ParallelThreshold defaults to DefaultParallelThreshold.
	ParallelThreshold int
	// VectorThreshold defaults to DefaultVectorThreshold.
	VectorThreshold int
	// Strategy forces a strategy for every call when not StrategyAuto.
	Strategy Strategy
	// LaneWidth overrides the detected lane width (elements per register).
	LaneWidth int

	// Executor runs parallel blocks. If nil, the engine owns a WorkerPool
	// sized to GOMAXPROCS and closes it in Close.
	Executor Executor
	// Pool allocates results. If nil, the engine owns a default pool.
	Pool *memory.Pool

	Logger   *slog.Logger
	Observer Observer
}

// Engine dispatches kernels over segments. It is safe for concurrent use.
type Engine struct {
	parallelThreshold int
	vectorThreshold   int
	strategy          Strategy
	laneWidth         int

	exec     Executor
	ownsExec bool
	pool     *memory.Pool
	ownsPool bool

	logger   *slog.Logger
	observer Observer
}

// New creates an engine.
func New(cfg Config) *Engine {
	e := &Engine{
		parallelThreshold: cfg.ParallelThreshold,
		vectorThreshold:   cfg.VectorThreshold,
		strategy:          cfg.Strategy,
		laneWidth:         cfg.LaneWidth,
		exec:              cfg.Executor,
		pool:              cfg.Pool,
		logger:            cfg.Logger,
		observer:          cfg.Observer,
	}
	if e.parallelThreshold <= 0 {
		e.parallelThreshold = DefaultParallelThreshold
	}
	if e.vectorThreshold <= 0 {
		e.vectorThreshold = DefaultVectorThreshold
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.exec == nil {
		e.exec = NewWorkerPool(0)
		e.ownsExec = true
	}
	if e.pool == nil {
		e.pool = memory.NewPool(memory.Config{Logger: cfg.Logger})
		e.ownsPool = true
	}

	e.logger.Debug("engine created",
		"parallel_threshold", e.parallelThreshold,
		"vector_threshold", e.vectorThreshold,
		"strategy", e.strategy.String(),
		"isa", simd.ActiveISA().String(),
		"workers", e.exec.Workers(),
	)
	return e
}

// Pool returns the pool results are allocated from.
func (e *Engine) Pool() *memory.Pool { return e.pool }

// Executor returns the executor.
func (e *Engine) Executor() Executor { return e.exec }

// Strategy returns the strategy used for n elements.
func (e *Engine) Strategy(n int) Strategy {
	if e.strategy != StrategyAuto {
		return e.strategy
	}
	switch {
	case n < e.parallelThreshold:
		return StrategyScalar
	case n < e.vectorThreshold:
		return StrategyParallel
	default:
		return StrategyVector
	}
}

// LaneWidth returns the elements per lane register for kind k.
func (e *Engine) LaneWidth(k dtype.Kind) int {
	if e.laneWidth > 0 {
		return e.laneWidth
	}
	return simd.Width(k)
}

// Close releases the executor and pool if the engine created them.
func (e *Engine) Close() error {
	if wp, ok := e.exec.(*WorkerPool); ok && e.ownsExec {
		wp.Close()
		e.logger.Debug("executor shut down", "workers", wp.Workers())
	}
	if e.ownsPool {
		return e.pool.Close()
	}
	return nil
}
