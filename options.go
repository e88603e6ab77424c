package tensgo

import (
	"log/slog"

	"github.com/hupe1980/tensgo/engine"
)

type options struct {
	parallelThreshold int
	vectorThreshold   int
	strategy          engine.Strategy
	maxRetainedBytes  int64
	workers           int
	executor          engine.Executor
	metricsCollector  MetricsCollector
	logger            *Logger
}

// Option configures a Runtime.
type Option func(*options)

// WithParallelThreshold sets the element count from which work is split
// across the executor. Zero keeps engine.DefaultParallelThreshold.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.parallelThreshold = n
	}
}

// WithVectorThreshold sets the element count from which the vectorised
// kernels are used. Zero keeps engine.DefaultVectorThreshold.
func WithVectorThreshold(n int) Option {
	return func(o *options) {
		o.vectorThreshold = n
	}
}

// WithStrategy forces one strategy for every dispatch, regardless of size.
// Mostly useful for benchmarks and for comparing strategies in tests.
func WithStrategy(s engine.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithMaxRetainedBytes bounds the bytes idle buffers may hold.
// A negative value disables retention entirely.
//
// Example:
//
//	rt := tensgo.New(tensgo.WithMaxRetainedBytes(64 << 20)) // 64 MiB
func WithMaxRetainedBytes(n int64) Option {
	return func(o *options) {
		o.maxRetainedBytes = n
	}
}

// WithWorkers sizes the runtime-owned worker pool. Ignored when an executor
// is supplied with WithExecutor. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithExecutor runs parallel blocks on exec. The runtime does not close a
// supplied executor.
func WithExecutor(exec engine.Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

// WithMetricsCollector configures a metrics collector for pool and dispatch
// events. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tensgo.BasicMetricsCollector{}
//	rt := tensgo.New(tensgo.WithMetricsCollector(metrics))
//	// ... use rt ...
//	stats := metrics.GetStats()
//	fmt.Printf("Dispatches: %d, Avg latency: %dns\n", stats.Dispatches, stats.DispatchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	rt := tensgo.New(tensgo.WithLogger(tensgo.NewJSONLogger(slog.LevelDebug)))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
