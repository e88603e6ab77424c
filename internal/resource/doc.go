// Package resource implements the Controller that governs shared limits.
//
// The Controller manages three resource types:
//
//   - Memory: a byte budget, either for idle buffers the pool may retain
//     (non-blocking, fail-fast) or for checkpoint transfer buffers (blocking)
//   - Concurrency: slots for background jobs such as parallel checkpoint uploads
//   - IO: a token bucket that rate-limits checkpoint reads and writes
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. TryAcquireMemory never blocks; the pool discards a
// released buffer instead of recycling it when the budget is exhausted:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	})
//
//	if !rc.TryAcquireMemory(int64(len(buf))) {
//	    // over budget: let the GC reclaim buf
//	}
//
// AcquireMemory waits for the budget instead and fails with
// ErrMemoryLimitExceeded only for a request larger than the whole limit.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops that
// always grant the request.
package resource
