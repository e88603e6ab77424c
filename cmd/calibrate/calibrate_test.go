package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/testutil"
)

func TestSizes(t *testing.T) {
	assert.Equal(t, []int{256, 512, 1024}, sizes(256, 1024))
	assert.Equal(t, []int{1, 2, 4}, sizes(0, 7))
	assert.Empty(t, sizes(16, 8))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3*time.Nanosecond, median([]time.Duration{5, 1, 3}))
	assert.Equal(t, time.Duration(0), median(nil))
}

func samplesFor(op string, size int, scalar, parallel, vector time.Duration) []Sample {
	return []Sample{
		{Op: op, Size: size, Strategy: "scalar", Median: scalar},
		{Op: op, Size: size, Strategy: "parallel", Median: parallel},
		{Op: op, Size: size, Strategy: "vector", Median: vector},
	}
}

func TestCrossover(t *testing.T) {
	var samples []Sample
	samples = append(samples, samplesFor("sum", 1024, 10, 20, 30)...)
	samples = append(samples, samplesFor("add", 1024, 10, 20, 30)...)
	// Parallel wins for sum but not add at 2048.
	samples = append(samples, samplesFor("sum", 2048, 20, 15, 30)...)
	samples = append(samples, samplesFor("add", 2048, 20, 25, 30)...)
	samples = append(samples, samplesFor("sum", 4096, 40, 20, 15)...)
	samples = append(samples, samplesFor("add", 4096, 40, 20, 25)...)
	samples = append(samples, samplesFor("sum", 8192, 80, 30, 10)...)
	samples = append(samples, samplesFor("add", 8192, 80, 30, 20)...)

	assert.Equal(t, 4096, crossover(samples, engine.StrategyScalar, engine.StrategyParallel))
	assert.Equal(t, 8192, crossover(samples, engine.StrategyParallel, engine.StrategyVector))
	assert.Equal(t, 0, crossover(samples, engine.StrategyVector, engine.StrategyScalar))
}

func TestRun(t *testing.T) {
	pool := testutil.NewPool(t)

	r, err := run(dtype.Float64, config{minSize: 8, maxSize: 32, reps: 1}, pool, engine.Serial{})
	require.NoError(t, err)

	assert.Equal(t, "float64", r.Kind)
	assert.Equal(t, 1, r.Workers)
	// 3 sizes x 3 strategies x 2 ops
	assert.Len(t, r.Samples, 18)
	assert.Equal(t, int64(0), pool.Stats().LiveBuffers)

	_, err = run(dtype.Invalid, config{minSize: 8, maxSize: 8, reps: 1}, pool, engine.Serial{})
	require.Error(t, err)
}
