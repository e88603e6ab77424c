package tensgo

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/segment"
)

func TestRuntime(t *testing.T) {
	t.Run("AcquireAndRelease", func(t *testing.T) {
		rt := New()
		defer rt.Close()

		s, err := AcquireSegment[float32](rt, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, s.Size())
		assert.Equal(t, int64(1), rt.Stats().LiveBuffers)

		s.Release()
		assert.Equal(t, int64(0), rt.Stats().LiveBuffers)
		assert.Equal(t, 1, rt.Stats().FreeBuffers)
	})

	t.Run("NegativeLength", func(t *testing.T) {
		rt := New()
		defer rt.Close()

		_, err := AcquireSegment[int32](rt, -1)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("AcquireAfterClose", func(t *testing.T) {
		rt := New()
		require.NoError(t, rt.Close())
		require.NoError(t, rt.Close())

		_, err := AcquireSegment[float64](rt, 8)
		require.ErrorIs(t, err, ErrPoolClosed)
	})

	t.Run("Workers", func(t *testing.T) {
		rt := New(WithWorkers(3))
		defer rt.Close()
		assert.Equal(t, 3, rt.Engine().Executor().Workers())
	})

	t.Run("Executor", func(t *testing.T) {
		rt := New(WithExecutor(engine.Serial{}), WithWorkers(8))
		defer rt.Close()
		assert.Equal(t, 1, rt.Engine().Executor().Workers())
	})

	t.Run("Thresholds", func(t *testing.T) {
		rt := New(WithParallelThreshold(10), WithVectorThreshold(100))
		defer rt.Close()

		e := rt.Engine()
		assert.Equal(t, engine.StrategyScalar, e.Strategy(9))
		assert.Equal(t, engine.StrategyParallel, e.Strategy(10))
		assert.Equal(t, engine.StrategyVector, e.Strategy(100))
	})

	t.Run("ForcedStrategy", func(t *testing.T) {
		rt := New(WithStrategy(engine.StrategyVector))
		defer rt.Close()
		assert.Equal(t, engine.StrategyVector, rt.Engine().Strategy(1))
	})

	t.Run("LaneWidth", func(t *testing.T) {
		rt := New()
		defer rt.Close()
		assert.NotEmpty(t, rt.ISA())
		assert.GreaterOrEqual(t, rt.LaneWidth(dtype.Float32), rt.LaneWidth(dtype.Float64))
	})
}

func TestLayers(t *testing.T) {
	rt := New()
	defer rt.Close()

	outer, err := AcquireSegment[float32](rt, 4)
	require.NoError(t, err)
	defer outer.Release()

	assert.Equal(t, 1, rt.PushLayer())
	a, err := AcquireSegment[float32](rt, 4)
	require.NoError(t, err)
	b, err := AcquireSegment[float32](rt, 4)
	require.NoError(t, err)
	b.Release()

	released, err := rt.PopLayer()
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.False(t, a.IsValid())
	assert.True(t, outer.IsValid())

	_, err = rt.PopLayer()
	require.ErrorIs(t, err, ErrLayerUnderflow)
}

func TestScope(t *testing.T) {
	rt := New()
	defer rt.Close()

	var inner *segment.Owned[int64]
	sentinel := errors.New("boom")
	err := rt.Scope(func() error {
		var err error
		inner, err = AcquireSegment[int64](rt, 16)
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.False(t, inner.IsValid())
	assert.Equal(t, 0, rt.Pool().LayerDepth())
	assert.Equal(t, int64(0), rt.Stats().LiveBuffers)
}

func TestWrapSegment(t *testing.T) {
	rt := New()
	defer rt.Close()

	base, err := AcquireSegment[float32](rt, 6)
	require.NoError(t, err)
	copy(base.Slice(), []float32{0, 1, 2, 3, 4, 5})

	col, err := WrapSegment[float32](base, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3, 5}, segment.ToSlice[float32](col))

	_, err = WrapSegment[float32](base, 1, 2, 4)
	var ive *ErrInvalidView
	require.ErrorAs(t, err, &ive)
	assert.Equal(t, 6, ive.BaseSize)

	base.Release()
	assert.True(t, col.IsValid())
	col.Release()
	assert.Equal(t, int64(0), rt.Stats().LiveBuffers)
}

func TestTranslateError(t *testing.T) {
	e := New()
	defer e.Close()

	a, err := AcquireSegment[float32](e, 3)
	require.NoError(t, err)
	defer a.Release()
	b, err := AcquireSegment[float32](e, 4)
	require.NoError(t, err)
	defer b.Release()

	_, err = engine.Add[float32](e.Engine(), a, b)
	err = translateError(err)

	var sm *ErrSizeMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 3, sm.Left)
	assert.Equal(t, 4, sm.Right)

	var inner *engine.SizeMismatchError
	assert.ErrorAs(t, err, &inner)

	assert.NoError(t, translateError(nil))
	other := errors.New("other")
	assert.Same(t, other, translateError(other))
}

func TestMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	rt := New(WithMetricsCollector(mc), WithExecutor(engine.Serial{}))
	defer rt.Close()

	a, err := AcquireSegment[float32](rt, 8)
	require.NoError(t, err)
	b, err := AcquireSegment[float32](rt, 8)
	require.NoError(t, err)

	sum, err := engine.Add[float32](rt.Engine(), a, b)
	require.NoError(t, err)
	a.Release()
	b.Release()
	sum.Release()

	again, err := AcquireSegment[float32](rt, 8)
	require.NoError(t, err)
	again.Release()

	stats := mc.GetStats()
	assert.Equal(t, int64(4), stats.Acquires)
	assert.Equal(t, int64(1), stats.Reuses)
	assert.Equal(t, int64(4), stats.Releases)
	assert.Equal(t, int64(0), stats.Discards)
	assert.Equal(t, int64(1), stats.Dispatches)
	assert.Equal(t, int64(1), stats.ScalarCalls)
	assert.Equal(t, int64(8), stats.ElementsTotal)
	assert.Same(t, mc, rt.Metrics())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rt := New(WithLogger(logger))
	defer rt.Close()

	rt.PushLayer()
	_, err := rt.PopLayer()
	require.NoError(t, err)
	rt.LogStats(t.Context())

	out := buf.String()
	assert.Contains(t, out, "runtime created")
	assert.Contains(t, out, "layer pushed")
	assert.Contains(t, out, "layer popped")
	assert.Contains(t, out, "live_buffers=0")
}

func TestNilOptions(t *testing.T) {
	rt := New(nil, WithLogger(nil), WithMetricsCollector(nil))
	defer rt.Close()

	assert.IsType(t, NoopMetricsCollector{}, rt.Metrics())
	assert.NotNil(t, rt.Logger())
}
