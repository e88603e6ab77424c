package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/tensgo/dtype"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Fill fills dst with values drawn uniformly from [lo, hi) and converted to T.
// Locks only once per call.
func Fill[T dtype.Number](r *RNG, dst []T, lo, hi float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := hi - lo
	for i := range dst {
		dst[i] = T(lo + r.rand.Float64()*span)
	}
}

// Uniform returns n values drawn uniformly from [lo, hi).
func Uniform[T dtype.Number](r *RNG, n int, lo, hi float64) []T {
	out := make([]T, n)
	Fill(r, out, lo, hi)
	return out
}

// Gaussian returns n values from a standard normal distribution.
func Gaussian[T dtype.Float](r *RNG, n int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, n)
	for i := range out {
		out[i] = T(r.rand.NormFloat64())
	}
	return out
}

// UnitVector returns an L2-normalized random vector.
func UnitVector[T dtype.Float](r *RNG, n int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := make([]float64, n)
	var norm float64
	for i := range raw {
		v := r.rand.NormFloat64()
		raw[i] = v
		norm += v * v
	}
	if norm == 0 {
		norm = 1
	}

	inv := 1 / math.Sqrt(norm)
	out := make([]T, n)
	for i, v := range raw {
		out[i] = T(v * inv)
	}
	return out
}

// Sequence returns [start, start+1, ..., start+n-1].
func Sequence[T dtype.Number](n int, start T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = start + T(i)
	}
	return out
}
