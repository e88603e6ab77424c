// Package segment provides reference-counted views over numeric buffers.
//
// An Owned segment holds one pooled memory.Buffer (or a caller slice) and an
// atomic reference count. The buffer returns to its pool when the count drops
// to zero. A Wrapper is a strided view (offset, stride, length) over another
// segment; it keeps its base alive through one reference and never owns
// memory itself.
//
// Every access validates the reference count and the buffer generation.
// Touching a released segment panics with ErrUseAfterRelease and an index
// outside [0, Size) panics with *IndexError.
package segment
