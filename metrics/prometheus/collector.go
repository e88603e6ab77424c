package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
)

// Namespace prefixes every metric name.
const Namespace = "tensgo"

// Collector records pool and dispatch events. It satisfies
// tensgo.MetricsCollector.
type Collector struct {
	acquires      *prometheus.CounterVec
	acquiredBytes *prometheus.CounterVec
	releases      *prometheus.CounterVec
	liveBytes     *prometheus.GaugeVec
	dispatches    *prometheus.CounterVec
	elements      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		acquires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pool_acquires_total",
			Help:      "Buffers handed out by the pool",
		}, []string{"kind", "source"}),
		acquiredBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pool_acquired_bytes_total",
			Help:      "Bytes handed out by the pool",
		}, []string{"kind"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pool_releases_total",
			Help:      "Buffers returned to the pool",
		}, []string{"kind", "outcome"}),
		liveBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "pool_live_bytes",
			Help:      "Bytes currently handed out",
		}, []string{"kind"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "engine_dispatches_total",
			Help:      "Engine operations by strategy",
		}, []string{"op", "strategy"}),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "engine_elements_total",
			Help:      "Elements processed by strategy",
		}, []string{"strategy"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "engine_dispatch_seconds",
			Help:      "Latency of engine operations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"strategy"}),
	}

	for _, m := range []prometheus.Collector{
		c.acquires, c.acquiredBytes, c.releases, c.liveBytes,
		c.dispatches, c.elements, c.latency,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordAcquire counts an acquisition.
func (c *Collector) RecordAcquire(kind dtype.Kind, bytes int64, reused bool) {
	source := "alloc"
	if reused {
		source = "reuse"
	}
	k := kind.String()
	c.acquires.WithLabelValues(k, source).Inc()
	c.acquiredBytes.WithLabelValues(k).Add(float64(bytes))
	c.liveBytes.WithLabelValues(k).Add(float64(bytes))
}

// RecordRelease counts a release.
func (c *Collector) RecordRelease(kind dtype.Kind, bytes int64, retained bool) {
	outcome := "retained"
	if !retained {
		outcome = "discarded"
	}
	k := kind.String()
	c.releases.WithLabelValues(k, outcome).Inc()
	c.liveBytes.WithLabelValues(k).Sub(float64(bytes))
}

// RecordDispatch counts an engine operation.
func (c *Collector) RecordDispatch(op string, strategy engine.Strategy, elements int, duration time.Duration) {
	s := strategy.String()
	c.dispatches.WithLabelValues(op, s).Inc()
	c.elements.WithLabelValues(s).Add(float64(elements))
	c.latency.WithLabelValues(s).Observe(duration.Seconds())
}
