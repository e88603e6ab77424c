package tensgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/memory"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems, or use the
// Prometheus collector in metrics/prometheus.
//
// Implementations must be safe for concurrent use; hooks are called on the
// hot path of every acquisition and dispatch.
type MetricsCollector interface {
	// RecordAcquire is called for every pooled buffer handed out.
	// reused is true when the buffer came from a free list.
	RecordAcquire(kind dtype.Kind, bytes int64, reused bool)

	// RecordRelease is called when a buffer returns to the pool.
	// retained is false when the idle budget forced a discard.
	RecordRelease(kind dtype.Kind, bytes int64, retained bool)

	// RecordDispatch is called after each engine operation.
	RecordDispatch(op string, strategy engine.Strategy, elements int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAcquire(dtype.Kind, int64, bool)                      {}
func (NoopMetricsCollector) RecordRelease(dtype.Kind, int64, bool)                      {}
func (NoopMetricsCollector) RecordDispatch(string, engine.Strategy, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Acquires      atomic.Int64
	Reuses        atomic.Int64
	AcquiredBytes atomic.Int64
	Releases      atomic.Int64
	Discards      atomic.Int64
	Dispatches    atomic.Int64
	DispatchNanos atomic.Int64
	ScalarCalls   atomic.Int64
	ParallelCalls atomic.Int64
	VectorCalls   atomic.Int64
	ElementsTotal atomic.Int64
}

// RecordAcquire implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAcquire(_ dtype.Kind, bytes int64, reused bool) {
	b.Acquires.Add(1)
	b.AcquiredBytes.Add(bytes)
	if reused {
		b.Reuses.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(_ dtype.Kind, _ int64, retained bool) {
	b.Releases.Add(1)
	if !retained {
		b.Discards.Add(1)
	}
}

// RecordDispatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDispatch(_ string, strategy engine.Strategy, elements int, duration time.Duration) {
	b.Dispatches.Add(1)
	b.DispatchNanos.Add(duration.Nanoseconds())
	b.ElementsTotal.Add(int64(elements))
	switch strategy {
	case engine.StrategyScalar:
		b.ScalarCalls.Add(1)
	case engine.StrategyParallel:
		b.ParallelCalls.Add(1)
	case engine.StrategyVector:
		b.VectorCalls.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Acquires:      b.Acquires.Load(),
		Reuses:        b.Reuses.Load(),
		AcquiredBytes: b.AcquiredBytes.Load(),
		Releases:      b.Releases.Load(),
		Discards:      b.Discards.Load(),
		Dispatches:    b.Dispatches.Load(),
		ScalarCalls:   b.ScalarCalls.Load(),
		ParallelCalls: b.ParallelCalls.Load(),
		VectorCalls:   b.VectorCalls.Load(),
		ElementsTotal: b.ElementsTotal.Load(),
	}
	if s.Dispatches > 0 {
		s.DispatchAvgNanos = b.DispatchNanos.Load() / s.Dispatches
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Acquires         int64
	Reuses           int64
	AcquiredBytes    int64
	Releases         int64
	Discards         int64
	Dispatches       int64
	DispatchAvgNanos int64
	ScalarCalls      int64
	ParallelCalls    int64
	VectorCalls      int64
	ElementsTotal    int64
}

// observer adapts a MetricsCollector to the pool and engine hooks.
type observer struct {
	mc MetricsCollector
}

var (
	_ engine.Observer = observer{}
	_ memory.Observer = observer{}
)

func (o observer) OnAcquire(kind dtype.Kind, bytes int64, reused bool) {
	o.mc.RecordAcquire(kind, bytes, reused)
}

func (o observer) OnRelease(kind dtype.Kind, bytes int64, retained bool) {
	o.mc.RecordRelease(kind, bytes, retained)
}

func (o observer) OnDispatch(op string, strategy engine.Strategy, elements int, duration time.Duration) {
	o.mc.RecordDispatch(op, strategy, elements, duration)
}
