package segment

import (
	"iter"
	"sync/atomic"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/memory"
)

// Owned is a segment that owns its memory.
type Owned[T dtype.Number] struct {
	pool   *memory.Pool   // nil for FromSlice
	buf    *memory.Buffer // nil for FromSlice
	gen    uint64
	data   []T
	refs   atomic.Int32
	handle memory.Handle
}

var _ Segment[float32] = (*Owned[float32])(nil)

func (s *Owned[T]) check() {
	if s.refs.Load() <= 0 || (s.buf != nil && s.buf.Generation() != s.gen) {
		panic(ErrUseAfterRelease)
	}
}

// Size returns the number of elements.
func (s *Owned[T]) Size() int { return len(s.data) }

// Get returns element i.
func (s *Owned[T]) Get(i int) T {
	s.check()
	if uint(i) >= uint(len(s.data)) {
		panic(&IndexError{Index: i, Size: len(s.data)})
	}
	return s.data[i]
}

// Set stores v at element i.
func (s *Owned[T]) Set(i int, v T) {
	s.check()
	if uint(i) >= uint(len(s.data)) {
		panic(&IndexError{Index: i, Size: len(s.data)})
	}
	s.data[i] = v
}

// Values enumerates the elements in order.
func (s *Owned[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		s.check()
		for _, v := range s.data {
			if !yield(v) {
				return
			}
		}
	}
}

// GetSpan returns the backing slice.
func (s *Owned[T]) GetSpan(_ []T) ([]T, bool) {
	s.check()
	return s.data, false
}

// SetSpan writes src into the segment starting at element 0.
func (s *Owned[T]) SetSpan(src []T) {
	s.check()
	if len(src) > len(s.data) {
		panic(&IndexError{Index: len(src) - 1, Size: len(s.data)})
	}
	copy(s.data, src)
}

// CopyTo copies elements into dst.
func (s *Owned[T]) CopyTo(dst Segment[T], sourceOffset, targetOffset int) int {
	s.check()
	return copySegment[T](s, dst, sourceOffset, targetOffset)
}

// CopySpanTo copies the leading elements into dst.
func (s *Owned[T]) CopySpanTo(dst []T) int {
	s.check()
	return copy(dst, s.data)
}

func (s *Owned[T]) backing() ([]T, bool) {
	s.check()
	return s.data, true
}

// Slice returns the backing slice. It is valid until the segment is released.
func (s *Owned[T]) Slice() []T {
	s.check()
	return s.data
}

// RefCount returns the current reference count.
func (s *Owned[T]) RefCount() int32 { return s.refs.Load() }

// AddRef adds a reference. It panics with ErrUseAfterRelease on a released segment.
func (s *Owned[T]) AddRef() int32 {
	for {
		n := s.refs.Load()
		if n <= 0 {
			panic(ErrUseAfterRelease)
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return n + 1
		}
	}
}

// Release drops a reference and returns the buffer to its pool at zero.
// Releasing a segment with no references panics with ErrUseAfterRelease.
func (s *Owned[T]) Release() int32 {
	n := s.refs.Add(-1)
	if n < 0 {
		s.refs.Store(0)
		panic(ErrUseAfterRelease)
	}
	if n == 0 {
		s.free()
	}
	return n
}

// ReleaseScoped drops one reference if the segment is still alive.
// Lifetime layers call it on pop.
func (s *Owned[T]) ReleaseScoped() {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return
		}
		if s.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				s.free()
			}
			return
		}
	}
}

// IsValid reports whether the segment is alive and its buffer not recycled.
func (s *Owned[T]) IsValid() bool {
	return s.refs.Load() > 0 && (s.buf == nil || s.buf.Generation() == s.gen)
}

func (s *Owned[T]) free() {
	if s.pool == nil {
		return
	}
	s.pool.Untrack(s.handle)
	s.pool.Release(s.buf)
}
