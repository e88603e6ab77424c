package tensor

import (
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// Tensor4D is a rank-4 tensor: count rank-3 tensors of depth x rows x cols.
type Tensor4D[T dtype.Number] struct {
	base[T]
}

// MakeTensor4D wraps seg as a count x depth x rows x cols tensor, adopting
// the caller's reference. One dimension may be Unspecified.
func MakeTensor4D[T dtype.Number](seg segment.Segment[T], count, depth, rows, cols int) (*Tensor4D[T], error) {
	shape, err := Resolve(seg.Size(), count, depth, rows, cols)
	if err != nil {
		return nil, err
	}
	return &Tensor4D[T]{base: base[T]{seg: seg, shape: shape}}, nil
}

// NewTensor4D acquires a zeroed count x depth x rows x cols tensor from pool.
func NewTensor4D[T dtype.Number](pool *memory.Pool, count, depth, rows, cols int) (*Tensor4D[T], error) {
	seg, err := acquireShape[T](pool, count, depth, rows, cols)
	if err != nil {
		return nil, err
	}
	return &Tensor4D[T]{base: base[T]{seg: seg, shape: Shape{count, depth, rows, cols}}}, nil
}

// Count returns the number of rank-3 tensors.
func (t *Tensor4D[T]) Count() int { return t.shape[0] }

// Depth returns the matrices per rank-3 tensor.
func (t *Tensor4D[T]) Depth() int { return t.shape[1] }

// Rows returns the rows per matrix.
func (t *Tensor4D[T]) Rows() int { return t.shape[2] }

// Columns returns the columns per matrix.
func (t *Tensor4D[T]) Columns() int { return t.shape[3] }

func (t *Tensor4D[T]) offset(n, d, r, c int) int {
	checkIndex(n, t.shape[0])
	checkIndex(d, t.shape[1])
	checkIndex(r, t.shape[2])
	checkIndex(c, t.shape[3])
	return ((n*t.shape[1]+d)*t.shape[2]+r)*t.shape[3] + c
}

// At returns the element at (n, d, r, c).
func (t *Tensor4D[T]) At(n, d, r, c int) T { return t.seg.Get(t.offset(n, d, r, c)) }

// SetAt stores x at (n, d, r, c).
func (t *Tensor4D[T]) SetAt(n, d, r, c int, x T) { t.seg.Set(t.offset(n, d, r, c), x) }

// Tensor returns a view of rank-3 tensor i.
func (t *Tensor4D[T]) Tensor(i int) *Tensor3D[T] {
	checkIndex(i, t.shape[0])
	block := t.shape[1] * t.shape[2] * t.shape[3]
	view := segment.Wrap(t.seg, i*block, 1, block)
	return &Tensor3D[T]{base: base[T]{seg: view, shape: t.shape[1:].Clone()}}
}

// Add returns t + o.
func (t *Tensor4D[T]) Add(e *engine.Engine, o *Tensor4D[T]) (*Tensor4D[T], error) {
	b, err := t.zip(e, "add", &o.base, engine.Add[T])
	return wrapTensor4D(b, err)
}

// Subtract returns t - o.
func (t *Tensor4D[T]) Subtract(e *engine.Engine, o *Tensor4D[T]) (*Tensor4D[T], error) {
	b, err := t.zip(e, "subtract", &o.base, engine.Subtract[T])
	return wrapTensor4D(b, err)
}

// Scale returns t * s.
func (t *Tensor4D[T]) Scale(e *engine.Engine, s T) (*Tensor4D[T], error) {
	b, err := t.apply(e, scaleOp(s))
	return wrapTensor4D(b, err)
}

// Clone returns a pooled copy of t.
func (t *Tensor4D[T]) Clone(e *engine.Engine) (*Tensor4D[T], error) {
	b, err := t.apply(e, engine.Clone[T])
	return wrapTensor4D(b, err)
}

func wrapTensor4D[T dtype.Number](b base[T], err error) (*Tensor4D[T], error) {
	if err != nil {
		return nil, err
	}
	return &Tensor4D[T]{base: b}, nil
}
