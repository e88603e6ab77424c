package tensor

import (
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// Vector is a rank-1 tensor.
type Vector[T dtype.Number] struct {
	base[T]
}

// MakeVector wraps seg, adopting the caller's reference.
func MakeVector[T dtype.Number](seg segment.Segment[T]) *Vector[T] {
	return &Vector[T]{base: base[T]{seg: seg, shape: Shape{seg.Size()}}}
}

// NewVector acquires a zeroed vector of n elements from pool.
func NewVector[T dtype.Number](pool *memory.Pool, n int) (*Vector[T], error) {
	seg, err := segment.Acquire[T](pool, n)
	if err != nil {
		return nil, err
	}
	return MakeVector[T](seg), nil
}

// VectorOf acquires a vector holding values from pool.
func VectorOf[T dtype.Number](pool *memory.Pool, values ...T) (*Vector[T], error) {
	seg, err := segment.Acquire[T](pool, len(values))
	if err != nil {
		return nil, err
	}
	copy(seg.Slice(), values)
	return MakeVector[T](seg), nil
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.seg.Size() }

// At returns element i.
func (v *Vector[T]) At(i int) T { return v.seg.Get(i) }

// SetAt stores x at element i.
func (v *Vector[T]) SetAt(i int, x T) { v.seg.Set(i, x) }

// Add returns v + o.
func (v *Vector[T]) Add(e *engine.Engine, o *Vector[T]) (*Vector[T], error) {
	b, err := v.zip(e, "add", &o.base, engine.Add[T])
	return wrapVector(b, err)
}

// Subtract returns v - o.
func (v *Vector[T]) Subtract(e *engine.Engine, o *Vector[T]) (*Vector[T], error) {
	b, err := v.zip(e, "subtract", &o.base, engine.Subtract[T])
	return wrapVector(b, err)
}

// PointwiseMultiply returns v * o elementwise.
func (v *Vector[T]) PointwiseMultiply(e *engine.Engine, o *Vector[T]) (*Vector[T], error) {
	b, err := v.zip(e, "multiply", &o.base, engine.PointwiseMultiply[T])
	return wrapVector(b, err)
}

// PointwiseDivide returns v / o elementwise.
func (v *Vector[T]) PointwiseDivide(e *engine.Engine, o *Vector[T]) (*Vector[T], error) {
	b, err := v.zip(e, "divide", &o.base, engine.PointwiseDivide[T])
	return wrapVector(b, err)
}

// Scale returns v * s.
func (v *Vector[T]) Scale(e *engine.Engine, s T) (*Vector[T], error) {
	b, err := v.apply(e, scaleOp(s))
	return wrapVector(b, err)
}

// AddScalar returns v + s.
func (v *Vector[T]) AddScalar(e *engine.Engine, s T) (*Vector[T], error) {
	b, err := v.apply(e, addScalarOp(s))
	return wrapVector(b, err)
}

// Map returns a vector with fn applied through one of the engine's unary ops,
// for example engine.Sqrt[float32].
func (v *Vector[T]) Map(e *engine.Engine, fn func(*engine.Engine, segment.Segment[T]) (*segment.Owned[T], error)) (*Vector[T], error) {
	b, err := v.apply(e, fn)
	return wrapVector(b, err)
}

// Dot returns the dot product of v and o.
func (v *Vector[T]) Dot(e *engine.Engine, o *Vector[T]) (T, error) {
	if err := v.check("dot", &o.base); err != nil {
		var zero T
		return zero, err
	}
	return engine.DotProduct(e, v.seg, o.seg)
}

// Clone returns a pooled copy of v.
func (v *Vector[T]) Clone(e *engine.Engine) (*Vector[T], error) {
	b, err := v.apply(e, engine.Clone[T])
	return wrapVector(b, err)
}

func wrapVector[T dtype.Number](b base[T], err error) (*Vector[T], error) {
	if err != nil {
		return nil, err
	}
	return &Vector[T]{base: b}, nil
}
