package main

import (
	"slices"
	"time"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
	"github.com/hupe1980/tensgo/testutil"
)

var strategies = []engine.Strategy{
	engine.StrategyScalar,
	engine.StrategyParallel,
	engine.StrategyVector,
}

// Sample is the median time of one operation at one size and strategy.
type Sample struct {
	Op       string        `json:"op"`
	Size     int           `json:"size"`
	Strategy string        `json:"strategy"`
	Median   time.Duration `json:"median_ns"`
}

// NsPerElement returns the median cost per element.
func (s Sample) NsPerElement() float64 {
	return float64(s.Median.Nanoseconds()) / float64(s.Size)
}

// Report is the result of a sweep.
type Report struct {
	Kind              string   `json:"kind"`
	ISA               string   `json:"isa"`
	Workers           int      `json:"workers"`
	Samples           []Sample `json:"samples"`
	ParallelThreshold int      `json:"parallel_threshold"`
	VectorThreshold   int      `json:"vector_threshold"`
}

type config struct {
	minSize int
	maxSize int
	reps    int
}

// sizes returns powers of two from lo to hi inclusive.
func sizes(lo, hi int) []int {
	var out []int
	for n := max(lo, 1); n <= hi; n *= 2 {
		out = append(out, n)
	}
	return out
}

func median(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	s := slices.Clone(ds)
	slices.Sort(s)
	return s[len(s)/2]
}

// sweep measures Sum and Add for every size and strategy.
func sweep[T dtype.Number](cfg config, pool *memory.Pool, exec engine.Executor) ([]Sample, error) {
	engines := make(map[engine.Strategy]*engine.Engine, len(strategies))
	for _, s := range strategies {
		engines[s] = engine.New(engine.Config{Strategy: s, Executor: exec, Pool: pool})
	}
	defer func() {
		for _, e := range engines {
			_ = e.Close()
		}
	}()

	rng := testutil.NewRNG(1)
	var samples []Sample
	for _, n := range sizes(cfg.minSize, cfg.maxSize) {
		a, err := segment.Acquire[T](pool, n)
		if err != nil {
			return nil, err
		}
		b, err := segment.Acquire[T](pool, n)
		if err != nil {
			a.Release()
			return nil, err
		}
		testutil.Fill(rng, a.Slice(), 0, 8)
		testutil.Fill(rng, b.Slice(), 0, 8)

		for _, s := range strategies {
			e := engines[s]

			sum := make([]time.Duration, cfg.reps)
			add := make([]time.Duration, cfg.reps)
			for i := range cfg.reps {
				start := time.Now()
				_ = engine.Sum[T](e, a)
				sum[i] = time.Since(start)

				start = time.Now()
				out, err := engine.Add[T](e, a, b)
				add[i] = time.Since(start)
				if err != nil {
					a.Release()
					b.Release()
					return nil, err
				}
				out.Release()
			}

			samples = append(samples,
				Sample{Op: "sum", Size: n, Strategy: s.String(), Median: median(sum)},
				Sample{Op: "add", Size: n, Strategy: s.String(), Median: median(add)},
			)
		}
		a.Release()
		b.Release()
	}
	return samples, nil
}

// crossover returns the smallest size from which faster beats slower for
// every op at that size and all larger sizes. It returns 0 if faster never
// wins for good.
func crossover(samples []Sample, slower, faster engine.Strategy) int {
	type key struct {
		op       string
		size     int
		strategy string
	}
	byKey := make(map[key]time.Duration, len(samples))
	var ns []int
	ops := map[string]bool{}
	for _, s := range samples {
		byKey[key{s.Op, s.Size, s.Strategy}] = s.Median
		ops[s.Op] = true
		if !slices.Contains(ns, s.Size) {
			ns = append(ns, s.Size)
		}
	}
	slices.Sort(ns)

	threshold := 0
	for i := len(ns) - 1; i >= 0; i-- {
		wins := true
		for op := range ops {
			slow, ok1 := byKey[key{op, ns[i], slower.String()}]
			fast, ok2 := byKey[key{op, ns[i], faster.String()}]
			if !ok1 || !ok2 || fast >= slow {
				wins = false
				break
			}
		}
		if !wins {
			break
		}
		threshold = ns[i]
	}
	return threshold
}
