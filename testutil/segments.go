package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// NewPool returns a pool that is closed when the test ends.
func NewPool(t testing.TB) *memory.Pool {
	t.Helper()
	p := memory.NewPool(memory.Config{})
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// Segment acquires a pooled segment holding values.
func Segment[T dtype.Number](t testing.TB, pool *memory.Pool, values ...T) *segment.Owned[T] {
	t.Helper()
	s, err := segment.Acquire[T](pool, len(values))
	require.NoError(t, err)
	copy(s.Slice(), values)
	return s
}

// InDeltaSlice asserts that got and want have equal length and every pair of
// elements differs by at most delta. NaN matches NaN.
func InDeltaSlice[T dtype.Number](t testing.TB, want, got []T, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, got, len(want), msgAndArgs...) {
		return false
	}
	ok := true
	for i := range want {
		w, g := float64(want[i]), float64(got[i])
		if math.IsNaN(w) && math.IsNaN(g) {
			continue
		}
		if w == g {
			continue
		}
		if !assert.InDelta(t, w, g, delta, append([]any{"index %d"}, i)...) {
			ok = false
		}
	}
	return ok
}
