// Package engine executes elementwise and reduction kernels over segments.
//
// # Shapes
//
// Every operation is one of four shapes:
//   - Transform: unary, returns a new pooled segment
//   - Zip: binary over equally sized segments, returns a new pooled segment
//   - Mutate / MutateZip: in-place unary or binary update of a target
//   - Reduce / ReduceZip / MinMax: fold to a scalar
//
// Callers supply a vector callback, which processes a lane-aligned run (a
// slice whose length is a whole number of lane registers), and a scalar
// callback with the same meaning. The engine picks the execution strategy from the element count:
//
//	size < ParallelThreshold  -> scalar loop on the calling goroutine
//	size < VectorThreshold    -> scalar loop split across the executor
//	otherwise                 -> lane-aligned blocks across the executor,
//	                             vector callback per block run, scalar tail
//
// # Executors
//
// Parallel work runs on an injectable Executor: the fixed WorkerPool, an
// errgroup-backed GroupExecutor, or Serial for deterministic tests. A panic in
// a callback (integer division by zero, for example) is re-raised on the
// calling goroutine.
package engine
