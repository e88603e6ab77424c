package tensor

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/segment"
)

// Any is a tensor of unknown element type.
type Any interface {
	io.WriterTo
	fmt.Stringer

	Kind() dtype.Kind
	Shape() Shape
	Rank() int
	Size() int
	AddRef() int32
	Release() int32
	IsValid() bool
}

// Tensor is a tensor of element type T and any rank.
type Tensor[T dtype.Number] interface {
	Any

	Segment() segment.Segment[T]
	Values() iter.Seq[T]
	ToSlice() []T
	Reshape(dims ...int) (Tensor[T], error)
}

var (
	_ Tensor[float32] = (*Vector[float32])(nil)
	_ Tensor[float32] = (*Matrix[float32])(nil)
	_ Tensor[float32] = (*Tensor3D[float32])(nil)
	_ Tensor[float32] = (*Tensor4D[float32])(nil)
)

// base holds what every rank shares: one segment and its shape.
type base[T dtype.Number] struct {
	seg   segment.Segment[T]
	shape Shape
}

// Kind returns the element kind.
func (b *base[T]) Kind() dtype.Kind { return dtype.Of[T]() }

// Shape returns a copy of the dimensions.
func (b *base[T]) Shape() Shape { return b.shape.Clone() }

// Rank returns the number of dimensions.
func (b *base[T]) Rank() int { return len(b.shape) }

// Size returns the number of elements.
func (b *base[T]) Size() int { return b.seg.Size() }

// Segment returns the backing segment without adding a reference.
func (b *base[T]) Segment() segment.Segment[T] { return b.seg }

// Values enumerates the elements in row-major order.
func (b *base[T]) Values() iter.Seq[T] { return b.seg.Values() }

// ToSlice copies the elements into a new slice.
func (b *base[T]) ToSlice() []T { return segment.ToSlice(b.seg) }

// AddRef adds a reference to the backing segment.
func (b *base[T]) AddRef() int32 { return b.seg.AddRef() }

// Release drops this tensor's reference to the backing segment.
func (b *base[T]) Release() int32 { return b.seg.Release() }

// IsValid reports whether the backing segment is alive.
func (b *base[T]) IsValid() bool { return b.seg.IsValid() }

// Reshape returns a tensor of the new dimensions sharing this tensor's
// segment. One dimension may be Unspecified. The result holds its own
// reference.
func (b *base[T]) Reshape(dims ...int) (Tensor[T], error) {
	shape, err := Resolve(b.seg.Size(), dims...)
	if err != nil {
		return nil, err
	}
	b.seg.AddRef()
	return fromShape(b.seg, shape), nil
}

const previewLimit = 8

func (b *base[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s](%s)[", rankName(len(b.shape)), b.Kind(), b.shape)
	if !b.seg.IsValid() {
		sb.WriteString("released]")
		return sb.String()
	}
	i := 0
	for v := range b.seg.Values() {
		if i == previewLimit {
			sb.WriteString(" ...")
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, v)
		i++
	}
	sb.WriteByte(']')
	return sb.String()
}

func rankName(rank int) string {
	switch rank {
	case 1:
		return "Vector"
	case 2:
		return "Matrix"
	case 3:
		return "Tensor3D"
	case 4:
		return "Tensor4D"
	default:
		return "Tensor"
	}
}

// fromShape wraps seg in the concrete type for the rank of a resolved shape,
// adopting the caller's reference.
func fromShape[T dtype.Number](seg segment.Segment[T], shape Shape) Tensor[T] {
	b := base[T]{seg: seg, shape: shape}
	switch len(shape) {
	case 1:
		return &Vector[T]{base: b}
	case 2:
		return &Matrix[T]{base: b}
	case 3:
		return &Tensor3D[T]{base: b}
	default:
		return &Tensor4D[T]{base: b}
	}
}

func (b *base[T]) check(op string, o *base[T]) error {
	if !b.shape.Equal(o.shape) {
		return &DimensionMismatchError{Op: op, Left: b.shape, Right: o.shape}
	}
	return nil
}

type binaryOp[T dtype.Number] func(*engine.Engine, segment.Segment[T], segment.Segment[T]) (*segment.Owned[T], error)

type unaryOp[T dtype.Number] func(*engine.Engine, segment.Segment[T]) (*segment.Owned[T], error)

// zip applies fn to two equally shaped tensors.
func (b *base[T]) zip(e *engine.Engine, op string, o *base[T], fn binaryOp[T]) (base[T], error) {
	if err := b.check(op, o); err != nil {
		return base[T]{}, err
	}
	out, err := fn(e, b.seg, o.seg)
	if err != nil {
		return base[T]{}, err
	}
	return base[T]{seg: out, shape: b.shape.Clone()}, nil
}

// apply maps fn over the tensor.
func (b *base[T]) apply(e *engine.Engine, fn unaryOp[T]) (base[T], error) {
	out, err := fn(e, b.seg)
	if err != nil {
		return base[T]{}, err
	}
	return base[T]{seg: out, shape: b.shape.Clone()}, nil
}

func scaleOp[T dtype.Number](s T) unaryOp[T] {
	return func(e *engine.Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
		return engine.MultiplyScalar(e, a, s)
	}
}

func addScalarOp[T dtype.Number](s T) unaryOp[T] {
	return func(e *engine.Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
		return engine.AddScalar(e, a, s)
	}
}

// Sum returns the sum of all elements.
func (b *base[T]) Sum(e *engine.Engine) T { return engine.Sum(e, b.seg) }

// MinMax returns the extremes and their first flat indices.
func (b *base[T]) MinMax(e *engine.Engine) (engine.Extremum[T], error) {
	return engine.MinMax(e, b.seg)
}

// checkIndex panics with *segment.IndexError if i is outside [0, n).
func checkIndex(i, n int) {
	if uint(i) >= uint(n) {
		panic(&segment.IndexError{Index: i, Size: n})
	}
}
