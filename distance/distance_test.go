package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
	"github.com/hupe1980/tensgo/testutil"
)

var strategies = []engine.Strategy{engine.StrategyScalar, engine.StrategyParallel, engine.StrategyVector}

func newEngine(t *testing.T, s engine.Strategy) (*engine.Engine, *memory.Pool) {
	t.Helper()
	pool := testutil.NewPool(t)
	e := engine.New(engine.Config{
		Strategy:  s,
		LaneWidth: 4,
		Executor:  engine.NewGroupExecutor(4),
		Pool:      pool,
	})
	t.Cleanup(func() { _ = e.Close() })
	return e, pool
}

func seg(t *testing.T, pool *memory.Pool, values ...float64) *segment.Owned[float64] {
	t.Helper()
	s := testutil.Segment(t, pool, values...)
	t.Cleanup(func() { s.Release() })
	return s
}

func TestDistances(t *testing.T) {
	tests := []struct {
		name     string
		metric   Metric
		a, b     []float64
		expected float64
	}{
		{"Euclidean", MetricEuclidean, []float64{0, 0}, []float64{3, 4}, 5},
		{"SquaredEuclidean", MetricSquaredEuclidean, []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"SquaredEuclideanMixed", MetricSquaredEuclidean, []float64{1, -1}, []float64{-1, 1}, 8},
		{"Manhattan", MetricManhattan, []float64{1, -2, 3}, []float64{4, 2, 3}, 7},
		{"CosineOrthogonal", MetricCosine, []float64{1, 0}, []float64{0, 1}, 1},
		{"CosineIdentical", MetricCosine, []float64{1, 0}, []float64{1, 0}, 0},
		{"CosineOpposite", MetricCosine, []float64{1, 2}, []float64{-1, -2}, 2},
		{"MeanSquared", MetricMeanSquared, []float64{1, 2, 3, 4}, []float64{2, 2, 2, 2}, 1.5},
		{"Identical", MetricEuclidean, []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
	}

	for _, s := range strategies {
		for _, tt := range tests {
			t.Run(s.String()+"/"+tt.name, func(t *testing.T) {
				e, pool := newEngine(t, s)
				fn, err := Provider[float64](tt.metric)
				require.NoError(t, err)

				got, err := fn(e, seg(t, pool, tt.a...), seg(t, pool, tt.b...))
				require.NoError(t, err)
				assert.InDelta(t, tt.expected, got, 1e-9)
				assert.Equal(t, int64(2), pool.Stats().LiveBuffers, "temporaries released")
			})
		}
	}
}

func TestDistanceSizeMismatch(t *testing.T) {
	e, pool := newEngine(t, engine.StrategyScalar)
	a := seg(t, pool, 1, 2, 3)
	b := seg(t, pool, 1, 2)

	for m := MetricEuclidean; m <= MetricMeanSquared; m++ {
		fn, err := Provider[float64](m)
		require.NoError(t, err)
		_, err = fn(e, a, b)
		var sizeErr *engine.SizeMismatchError
		assert.ErrorAs(t, err, &sizeErr, m.String())
	}
}

func TestCosineZeroVector(t *testing.T) {
	e, pool := newEngine(t, engine.StrategyScalar)
	got, err := Cosine(e, seg(t, pool, 0, 0), seg(t, pool, 1, 0))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestNorms(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			e, pool := newEngine(t, s)
			x := seg(t, pool, 3, -4, 0, 0, 0, 0, 0, 0, 0)

			l1, err := L1(e, x)
			require.NoError(t, err)
			assert.InDelta(t, 7.0, l1, 1e-12)

			l2, err := L2(e, x)
			require.NoError(t, err)
			assert.InDelta(t, 5.0, l2, 1e-12)
		})
	}
}

func TestStdDev(t *testing.T) {
	e, pool := newEngine(t, engine.StrategyVector)
	x := seg(t, pool, 2, 4, 4, 4, 5, 5, 7, 9)

	sd, err := StdDev(e, x, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sd, 1e-12)

	mean := 5.0
	sd, err = StdDev(e, x, &mean)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sd, 1e-12)

	_, err = StdDev(e, seg(t, pool), nil)
	assert.ErrorIs(t, err, engine.ErrEmpty)
}

func TestNormalizeInPlace(t *testing.T) {
	e, pool := newEngine(t, engine.StrategyScalar)

	x := seg(t, pool, 3, 4)
	ok, err := NormalizeInPlace(e, x)
	require.NoError(t, err)
	assert.True(t, ok)
	testutil.InDeltaSlice(t, []float64{0.6, 0.8}, x.Slice(), 1e-12)

	zero := seg(t, pool, 0, 0)
	ok, err = NormalizeInPlace(e, zero)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []float64{0, 0}, zero.Slice())
}

func TestMetric(t *testing.T) {
	assert.Equal(t, "Cosine", MetricCosine.String())
	assert.Equal(t, "Unknown(99)", Metric(99).String())

	m, err := ParseMetric("manhattan")
	require.NoError(t, err)
	assert.Equal(t, MetricManhattan, m)

	_, err = ParseMetric("hamming")
	assert.Error(t, err)

	_, err = Provider[float32](Metric(99))
	assert.Error(t, err)
}

func BenchmarkCosine(b *testing.B) {
	pool := memory.NewPool(memory.Config{})
	e := engine.New(engine.Config{Pool: pool})
	defer e.Close()

	rng := testutil.NewRNG(1)
	x := segment.FromSlice(testutil.Uniform[float32](rng, 1<<16, -1, 1))
	y := segment.FromSlice(testutil.Uniform[float32](rng, 1<<16, -1, 1))

	for b.Loop() {
		_, _ = Cosine(e, x, y)
	}
}
