// Package tensgo is a pooled, reference-counted numeric tensor engine.
//
// A Runtime bundles the three pieces every computation needs: a buffer pool
// that recycles numeric arrays, a dispatch engine that picks a scalar,
// parallel or vectorised strategy per call, and the executor the engine
// splits work across.
//
// # Quick Start
//
//	rt := tensgo.New()
//	defer rt.Close()
//
//	a, _ := tensor.VectorOf(rt.Pool(), float32(1), 2, 3)
//	b, _ := tensor.VectorOf(rt.Pool(), float32(4), 5, 6)
//	defer a.Release()
//	defer b.Release()
//
//	sum, _ := a.Add(rt.Engine(), b)
//	defer sum.Release()
//	fmt.Println(sum) // Vector[float32](3)[5 7 9]
//
// # Lifetimes
//
// Every segment carries a reference count and returns its buffer to the pool
// on the last Release. Lifetime layers release everything acquired while
// they were open in one step:
//
//	err := rt.Scope(func() error {
//	    tmp, _ := tensgo.AcquireSegment[float64](rt, 1024)
//	    _ = tmp // released when Scope returns
//	    return nil
//	})
//
// # Packages
//
//   - dtype: element kinds and numeric constraints
//   - memory: the buffer pool and lifetime layers
//   - segment: owned and strided segments
//   - engine: dispatch strategies, executors and the arithmetic surface
//   - tensor: vectors, matrices and rank 3/4 tensors, binary IO
//   - distance: distances, norms and activation functions
//   - checkpoint, blobstore, codec: persisting tensor sets
//
// # SIMD
//
// The vector lane width follows the best instruction set the CPU supports
// (AVX-512, AVX2, NEON, SVE2). Set TENSGO_SIMD=generic to force the generic
// width, for example when comparing results across machines.
package tensgo
