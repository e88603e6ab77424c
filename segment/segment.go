package segment

import (
	"iter"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/memory"
)

// Segment is an indexable, reference-counted sequence of numbers.
type Segment[T dtype.Number] interface {
	// Size returns the number of elements.
	Size() int
	// Get returns element i.
	Get(i int) T
	// Set stores v at element i.
	Set(i int, v T)
	// Values enumerates the elements in order.
	Values() iter.Seq[T]

	// GetSpan returns the elements as a contiguous slice. When the segment is
	// contiguous the backing memory is returned and wasTemporary is false;
	// otherwise the elements are copied into tmp (grown if needed).
	GetSpan(tmp []T) (span []T, wasTemporary bool)
	// SetSpan writes src into the segment starting at element 0.
	SetSpan(src []T)
	// CopyTo copies elements starting at sourceOffset into dst starting at
	// targetOffset and returns the number copied.
	CopyTo(dst Segment[T], sourceOffset, targetOffset int) int
	// CopySpanTo copies the leading elements into dst and returns the number copied.
	CopySpanTo(dst []T) int

	// AddRef adds a reference and returns the new count.
	AddRef() int32
	// Release drops a reference and returns the new count.
	Release() int32
	// IsValid reports whether the segment may still be accessed.
	IsValid() bool
}

// contiguous is implemented by segments that can expose backing memory.
type contiguous[T dtype.Number] interface {
	backing() ([]T, bool)
}

// Acquire returns a zeroed pooled segment of length elements with one
// reference. The segment is registered with the pool's innermost lifetime
// layer, if any.
func Acquire[T dtype.Number](pool *memory.Pool, length int) (*Owned[T], error) {
	buf, err := pool.Acquire(dtype.Of[T](), length)
	if err != nil {
		return nil, err
	}

	s := &Owned[T]{
		pool: pool,
		buf:  buf,
		gen:  buf.Generation(),
		data: memory.Data[T](buf)[:length],
	}
	s.refs.Store(1)
	s.handle = pool.Track(s)
	return s, nil
}

// FromSlice wraps data in an owning segment that is not pooled.
func FromSlice[T dtype.Number](data []T) *Owned[T] {
	s := &Owned[T]{data: data}
	s.refs.Store(1)
	return s
}

// ToSlice copies the elements of s into a new slice.
func ToSlice[T dtype.Number](s Segment[T]) []T {
	out := make([]T, s.Size())
	s.CopySpanTo(out)
	return out
}

// copySegment copies min(remaining src, remaining dst) elements.
func copySegment[T dtype.Number](src, dst Segment[T], srcOff, dstOff int) int {
	n := min(src.Size()-srcOff, dst.Size()-dstOff)
	if n <= 0 {
		return 0
	}

	if s, ok := contiguousOf(src); ok {
		if d, ok := contiguousOf(dst); ok {
			return copy(d[dstOff:dstOff+n], s[srcOff:srcOff+n])
		}
	}

	for i := range n {
		dst.Set(dstOff+i, src.Get(srcOff+i))
	}
	return n
}

func contiguousOf[T dtype.Number](s Segment[T]) ([]T, bool) {
	if c, ok := s.(contiguous[T]); ok {
		return c.backing()
	}
	return nil, false
}

func grow[T dtype.Number](tmp []T, n int) []T {
	if cap(tmp) < n {
		return make([]T, n)
	}
	return tmp[:n]
}
