// Package testutil provides testing utilities for tensgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG for random fixtures, helpers that
// build pooled segments from literal values and tolerant slice comparisons.
//
// # Random Fixtures
//
//	rng := testutil.NewRNG(seed)
//	xs := testutil.Uniform[float32](rng, 128, -1, 1)
//	ys := testutil.Gaussian[float64](rng, 128)
//
// # Segments
//
//	pool := testutil.NewPool(t)
//	seg := testutil.Segment(t, pool, 1, 2, 3)
package testutil
