// Package mem provides aligned allocation of typed numeric buffers.
//
// # Aligned Allocation
//
// Buffers start on a 64-byte boundary so that every lane register the engine
// loads from a pooled buffer is cache-line and AVX-512 aligned.
package mem
