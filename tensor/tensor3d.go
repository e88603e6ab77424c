package tensor

import (
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/internal/conv"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// Tensor3D is a rank-3 tensor: depth matrices of rows x cols.
type Tensor3D[T dtype.Number] struct {
	base[T]
}

// MakeTensor3D wraps seg as a depth x rows x cols tensor, adopting the
// caller's reference. One dimension may be Unspecified.
func MakeTensor3D[T dtype.Number](seg segment.Segment[T], depth, rows, cols int) (*Tensor3D[T], error) {
	shape, err := Resolve(seg.Size(), depth, rows, cols)
	if err != nil {
		return nil, err
	}
	return &Tensor3D[T]{base: base[T]{seg: seg, shape: shape}}, nil
}

// NewTensor3D acquires a zeroed depth x rows x cols tensor from pool.
func NewTensor3D[T dtype.Number](pool *memory.Pool, depth, rows, cols int) (*Tensor3D[T], error) {
	seg, err := acquireShape[T](pool, depth, rows, cols)
	if err != nil {
		return nil, err
	}
	return &Tensor3D[T]{base: base[T]{seg: seg, shape: Shape{depth, rows, cols}}}, nil
}

// Depth returns the number of matrices.
func (t *Tensor3D[T]) Depth() int { return t.shape[0] }

// Rows returns the rows per matrix.
func (t *Tensor3D[T]) Rows() int { return t.shape[1] }

// Columns returns the columns per matrix.
func (t *Tensor3D[T]) Columns() int { return t.shape[2] }

func (t *Tensor3D[T]) offset(d, r, c int) int {
	checkIndex(d, t.shape[0])
	checkIndex(r, t.shape[1])
	checkIndex(c, t.shape[2])
	return (d*t.shape[1]+r)*t.shape[2] + c
}

// At returns the element at (d, r, c).
func (t *Tensor3D[T]) At(d, r, c int) T { return t.seg.Get(t.offset(d, r, c)) }

// SetAt stores x at (d, r, c).
func (t *Tensor3D[T]) SetAt(d, r, c int, x T) { t.seg.Set(t.offset(d, r, c), x) }

// Matrix returns a view of matrix i.
func (t *Tensor3D[T]) Matrix(i int) *Matrix[T] {
	checkIndex(i, t.shape[0])
	plane := t.shape[1] * t.shape[2]
	view := segment.Wrap(t.seg, i*plane, 1, plane)
	return &Matrix[T]{base: base[T]{seg: view, shape: Shape{t.shape[1], t.shape[2]}}}
}

// Add returns t + o.
func (t *Tensor3D[T]) Add(e *engine.Engine, o *Tensor3D[T]) (*Tensor3D[T], error) {
	b, err := t.zip(e, "add", &o.base, engine.Add[T])
	return wrapTensor3D(b, err)
}

// Subtract returns t - o.
func (t *Tensor3D[T]) Subtract(e *engine.Engine, o *Tensor3D[T]) (*Tensor3D[T], error) {
	b, err := t.zip(e, "subtract", &o.base, engine.Subtract[T])
	return wrapTensor3D(b, err)
}

// PointwiseMultiply returns t * o elementwise.
func (t *Tensor3D[T]) PointwiseMultiply(e *engine.Engine, o *Tensor3D[T]) (*Tensor3D[T], error) {
	b, err := t.zip(e, "multiply", &o.base, engine.PointwiseMultiply[T])
	return wrapTensor3D(b, err)
}

// Scale returns t * s.
func (t *Tensor3D[T]) Scale(e *engine.Engine, s T) (*Tensor3D[T], error) {
	b, err := t.apply(e, scaleOp(s))
	return wrapTensor3D(b, err)
}

// Clone returns a pooled copy of t.
func (t *Tensor3D[T]) Clone(e *engine.Engine) (*Tensor3D[T], error) {
	b, err := t.apply(e, engine.Clone[T])
	return wrapTensor3D(b, err)
}

func wrapTensor3D[T dtype.Number](b base[T], err error) (*Tensor3D[T], error) {
	if err != nil {
		return nil, err
	}
	return &Tensor3D[T]{base: b}, nil
}

// acquireShape acquires a segment for non-negative dims.
func acquireShape[T dtype.Number](pool *memory.Pool, dims ...int) (*segment.Owned[T], error) {
	n, err := conv.Product(dims...)
	if err != nil {
		return nil, &InvalidShapeError{Dims: dims, Size: -1, Reason: err.Error()}
	}
	return segment.Acquire[T](pool, n)
}
