// Package simd detects the host's vector register width and provides the lane
// kernels used by the engine's vectorised strategy.
//
// # Supported Platforms
//
//   - x86-64: AVX-512 (64-byte registers), AVX2 (32-byte registers)
//   - ARM64: SVE2, NEON (16-byte registers)
//
// Runtime CPU feature detection selects the register width. Set TENSGO_SIMD
// to force a narrower ISA (for example "generic" to disable lane grouping).
//
// # Kernels
//
// Kernels operate on lane-aligned runs: slices whose length is a multiple of
// Width(kind). float64 runs go to gonum/floats and float32 runs to the blas32
// level 1 routines, both backed by gonum's SSE/AVX assembly on amd64. Other
// kinds, and operations gonum has no routine for, use portable loops over
// equal-length slices so the compiler can drop bounds checks. Every kernel
// has a scalar counterpart in the engine that defines its semantics.
package simd
