// Package memory provides the pooled numeric buffers that back every tensor.
//
// # Buffers
//
// A Buffer is a 64-byte aligned block of one element kind. Buffers are handed
// out by a Pool and returned to it when their owner is done. Free buffers are
// kept in lists keyed by (kind, capacity bucket), where the bucket is the
// power of two that bounds the capacity. Acquire prefers a free buffer with
// exactly the requested capacity, then any large enough buffer of the same
// bucket, and only then allocates.
//
// # Budget
//
// Idle bytes are limited by Config.MaxRetainedBytes. A released buffer that
// would push the idle total over the limit is dropped for the garbage collector
// instead of being retained.
//
// # Generations
//
// Every release bumps the buffer generation. Owners remember the generation
// they were handed and compare it on access, so a stale owner panics with
// ErrUseAfterRelease instead of reading another owner's data.
//
// # Lifetime Layers
//
// PushLayer opens a scope. Values registered with Track while the scope is the
// innermost one are released by the matching PopLayer if they are still alive.
// Layer membership is kept in roaring bitmaps of tracking IDs.
package memory
