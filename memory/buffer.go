package memory

import (
	"sync/atomic"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/mem"
)

// Buffer is a pooled block of capacity elements of one kind.
type Buffer struct {
	kind     dtype.Kind
	capacity int
	raw      []byte
	pool     *Pool

	// generation starts at 1 and is bumped on every release.
	generation atomic.Uint64
	leased     atomic.Bool
}

func newBuffer(p *Pool, kind dtype.Kind, capacity int) *Buffer {
	b := &Buffer{
		kind:     kind,
		capacity: capacity,
		raw:      mem.AllocAligned(int(mem.SizeOf(kind, capacity))),
		pool:     p,
	}
	b.generation.Store(1)
	return b
}

// Kind returns the element kind.
func (b *Buffer) Kind() dtype.Kind { return b.kind }

// Cap returns the capacity in elements.
func (b *Buffer) Cap() int { return b.capacity }

// Bytes returns the capacity in bytes.
func (b *Buffer) Bytes() int64 { return mem.SizeOf(b.kind, b.capacity) }

// Generation returns the current generation.
func (b *Buffer) Generation() uint64 { return b.generation.Load() }

// Leased reports whether the buffer is currently handed out.
func (b *Buffer) Leased() bool { return b.leased.Load() }

// Data returns the buffer contents as a slice of T with Cap elements.
// It panics with *KindMismatchError if T is not the buffer kind.
func Data[T dtype.Number](b *Buffer) []T {
	if k := dtype.Of[T](); k != b.kind {
		panic(&KindMismatchError{Buffer: b.kind, View: k})
	}
	return mem.View[T](b.raw)
}

func (b *Buffer) zero() {
	clear(b.raw)
}
