package segment

import (
	"iter"
	"sync/atomic"

	"github.com/hupe1980/tensgo/dtype"
)

// Wrapper is a strided view over a base segment.
type Wrapper[T dtype.Number] struct {
	base   Segment[T]
	offset int
	stride int
	length int
	refs   atomic.Int32
}

var _ Segment[float32] = (*Wrapper[float32])(nil)

// Wrap creates a view of length elements of base starting at offset and
// advancing by stride. The view holds one reference on base until it is
// released. It panics with *ViewError if the view does not fit.
func Wrap[T dtype.Number](base Segment[T], offset, stride, length int) *Wrapper[T] {
	size := base.Size()
	if offset < 0 || stride < 1 || length < 0 ||
		(length == 0 && offset > size) ||
		(length > 0 && offset+stride*(length-1) >= size) {
		panic(&ViewError{Offset: offset, Stride: stride, Length: length, BaseSize: size})
	}

	base.AddRef()
	w := &Wrapper[T]{base: base, offset: offset, stride: stride, length: length}
	w.refs.Store(1)
	return w
}

func (w *Wrapper[T]) check() {
	if w.refs.Load() <= 0 {
		panic(ErrUseAfterRelease)
	}
}

func (w *Wrapper[T]) index(i int) int {
	w.check()
	if uint(i) >= uint(w.length) {
		panic(&IndexError{Index: i, Size: w.length})
	}
	return w.offset + i*w.stride
}

// Offset returns the position of element 0 in the base.
func (w *Wrapper[T]) Offset() int { return w.offset }

// Stride returns the distance in the base between consecutive elements.
func (w *Wrapper[T]) Stride() int { return w.stride }

// Base returns the wrapped segment.
func (w *Wrapper[T]) Base() Segment[T] { return w.base }

// Size returns the number of elements.
func (w *Wrapper[T]) Size() int { return w.length }

// Get returns element i.
func (w *Wrapper[T]) Get(i int) T { return w.base.Get(w.index(i)) }

// Set stores v at element i.
func (w *Wrapper[T]) Set(i int, v T) { w.base.Set(w.index(i), v) }

// Values enumerates the elements in order.
func (w *Wrapper[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		w.check()
		if span, ok := w.backing(); ok {
			for _, v := range span {
				if !yield(v) {
					return
				}
			}
			return
		}
		for i := range w.length {
			if !yield(w.base.Get(w.offset + i*w.stride)) {
				return
			}
		}
	}
}

// GetSpan returns a slice of the base for stride-1 views over contiguous
// memory and a gathered copy in tmp otherwise.
func (w *Wrapper[T]) GetSpan(tmp []T) ([]T, bool) {
	w.check()
	if span, ok := w.backing(); ok {
		return span, false
	}

	tmp = grow(tmp, w.length)
	if src, ok := contiguousOf(w.base); ok {
		for i := range tmp {
			tmp[i] = src[w.offset+i*w.stride]
		}
		return tmp, true
	}
	for i := range tmp {
		tmp[i] = w.base.Get(w.offset + i*w.stride)
	}
	return tmp, true
}

// SetSpan writes src into the view starting at element 0.
func (w *Wrapper[T]) SetSpan(src []T) {
	w.check()
	if len(src) > w.length {
		panic(&IndexError{Index: len(src) - 1, Size: w.length})
	}
	if span, ok := w.backing(); ok {
		copy(span, src)
		return
	}
	if dst, ok := contiguousOf(w.base); ok {
		for i, v := range src {
			dst[w.offset+i*w.stride] = v
		}
		return
	}
	for i, v := range src {
		w.base.Set(w.offset+i*w.stride, v)
	}
}

// CopyTo copies elements into dst.
func (w *Wrapper[T]) CopyTo(dst Segment[T], sourceOffset, targetOffset int) int {
	w.check()
	return copySegment[T](w, dst, sourceOffset, targetOffset)
}

// CopySpanTo copies the leading elements into dst.
func (w *Wrapper[T]) CopySpanTo(dst []T) int {
	w.check()
	n := min(len(dst), w.length)
	if span, ok := w.backing(); ok {
		return copy(dst, span[:n])
	}
	for i := range n {
		dst[i] = w.base.Get(w.offset + i*w.stride)
	}
	return n
}

func (w *Wrapper[T]) backing() ([]T, bool) {
	if w.stride != 1 {
		return nil, false
	}
	src, ok := contiguousOf(w.base)
	if !ok {
		return nil, false
	}
	return src[w.offset : w.offset+w.length], true
}

// AddRef adds a reference to the view.
func (w *Wrapper[T]) AddRef() int32 {
	for {
		n := w.refs.Load()
		if n <= 0 {
			panic(ErrUseAfterRelease)
		}
		if w.refs.CompareAndSwap(n, n+1) {
			return n + 1
		}
	}
}

// Release drops a reference to the view and, at zero, the view's reference on
// its base.
func (w *Wrapper[T]) Release() int32 {
	n := w.refs.Add(-1)
	if n < 0 {
		w.refs.Store(0)
		panic(ErrUseAfterRelease)
	}
	if n == 0 {
		w.base.Release()
	}
	return n
}

// IsValid reports whether both the view and its base are alive.
func (w *Wrapper[T]) IsValid() bool {
	return w.refs.Load() > 0 && w.base.IsValid()
}
