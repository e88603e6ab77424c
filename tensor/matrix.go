package tensor

import (
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/internal/conv"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// Matrix is a rank-2 tensor in row-major order.
type Matrix[T dtype.Number] struct {
	base[T]
}

// MakeMatrix wraps seg as a rows x cols matrix, adopting the caller's
// reference. One of rows and cols may be Unspecified.
func MakeMatrix[T dtype.Number](seg segment.Segment[T], rows, cols int) (*Matrix[T], error) {
	shape, err := Resolve(seg.Size(), rows, cols)
	if err != nil {
		return nil, err
	}
	return &Matrix[T]{base: base[T]{seg: seg, shape: shape}}, nil
}

// NewMatrix acquires a zeroed rows x cols matrix from pool.
func NewMatrix[T dtype.Number](pool *memory.Pool, rows, cols int) (*Matrix[T], error) {
	return MatrixOf[T](pool, rows, cols, nil)
}

// MatrixOf acquires a rows x cols matrix from pool and copies values into it
// in row-major order.
func MatrixOf[T dtype.Number](pool *memory.Pool, rows, cols int, values []T) (*Matrix[T], error) {
	n, err := conv.Product(rows, cols)
	if err != nil {
		return nil, &InvalidShapeError{Dims: []int{rows, cols}, Size: len(values), Reason: err.Error()}
	}
	if len(values) > n {
		return nil, &InvalidShapeError{Dims: []int{rows, cols}, Size: len(values), Reason: "too many values"}
	}
	shape := Shape{rows, cols}
	seg, err := segment.Acquire[T](pool, n)
	if err != nil {
		return nil, err
	}
	copy(seg.Slice(), values)
	return &Matrix[T]{base: base[T]{seg: seg, shape: shape}}, nil
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.shape[0] }

// Columns returns the number of columns.
func (m *Matrix[T]) Columns() int { return m.shape[1] }

// At returns the element at row r, column c.
func (m *Matrix[T]) At(r, c int) T {
	checkIndex(r, m.shape[0])
	checkIndex(c, m.shape[1])
	return m.seg.Get(r*m.shape[1] + c)
}

// SetAt stores x at row r, column c.
func (m *Matrix[T]) SetAt(r, c int, x T) {
	checkIndex(r, m.shape[0])
	checkIndex(c, m.shape[1])
	m.seg.Set(r*m.shape[1]+c, x)
}

// Row returns a view of row r. The view holds a reference on the matrix
// segment until released.
func (m *Matrix[T]) Row(r int) *segment.Wrapper[T] {
	checkIndex(r, m.shape[0])
	return segment.Wrap(m.seg, r*m.shape[1], 1, m.shape[1])
}

// Column returns a strided view of column c.
func (m *Matrix[T]) Column(c int) *segment.Wrapper[T] {
	checkIndex(c, m.shape[1])
	return segment.Wrap(m.seg, c, m.shape[1], m.shape[0])
}

// GetRow returns row r as a vector view.
func (m *Matrix[T]) GetRow(r int) *Vector[T] {
	return MakeVector[T](m.Row(r))
}

// GetColumn returns column c as a vector view.
func (m *Matrix[T]) GetColumn(c int) *Vector[T] {
	return MakeVector[T](m.Column(c))
}

// Transpose returns a new cols x rows matrix.
func (m *Matrix[T]) Transpose(e *engine.Engine) (*Matrix[T], error) {
	rows, cols := m.shape[0], m.shape[1]
	out, err := segment.Acquire[T](e.Pool(), rows*cols)
	if err != nil {
		return nil, err
	}

	src, _ := m.seg.GetSpan(nil)
	dst := out.Slice()
	e.Range(rows, rows*cols, func(lo, hi int) {
		for r := lo; r < hi; r++ {
			row := src[r*cols : (r+1)*cols]
			for c, v := range row {
				dst[c*rows+r] = v
			}
		}
	})
	return &Matrix[T]{base: base[T]{seg: out, shape: Shape{cols, rows}}}, nil
}

// Add returns m + o.
func (m *Matrix[T]) Add(e *engine.Engine, o *Matrix[T]) (*Matrix[T], error) {
	b, err := m.zip(e, "add", &o.base, engine.Add[T])
	return wrapMatrix(b, err)
}

// Subtract returns m - o.
func (m *Matrix[T]) Subtract(e *engine.Engine, o *Matrix[T]) (*Matrix[T], error) {
	b, err := m.zip(e, "subtract", &o.base, engine.Subtract[T])
	return wrapMatrix(b, err)
}

// PointwiseMultiply returns m * o elementwise.
func (m *Matrix[T]) PointwiseMultiply(e *engine.Engine, o *Matrix[T]) (*Matrix[T], error) {
	b, err := m.zip(e, "multiply", &o.base, engine.PointwiseMultiply[T])
	return wrapMatrix(b, err)
}

// PointwiseDivide returns m / o elementwise.
func (m *Matrix[T]) PointwiseDivide(e *engine.Engine, o *Matrix[T]) (*Matrix[T], error) {
	b, err := m.zip(e, "divide", &o.base, engine.PointwiseDivide[T])
	return wrapMatrix(b, err)
}

// Scale returns m * s.
func (m *Matrix[T]) Scale(e *engine.Engine, s T) (*Matrix[T], error) {
	b, err := m.apply(e, scaleOp(s))
	return wrapMatrix(b, err)
}

// AddScalar returns m + s.
func (m *Matrix[T]) AddScalar(e *engine.Engine, s T) (*Matrix[T], error) {
	b, err := m.apply(e, addScalarOp(s))
	return wrapMatrix(b, err)
}

// Clone returns a pooled copy of m.
func (m *Matrix[T]) Clone(e *engine.Engine) (*Matrix[T], error) {
	b, err := m.apply(e, engine.Clone[T])
	return wrapMatrix(b, err)
}

func wrapMatrix[T dtype.Number](b base[T], err error) (*Matrix[T], error) {
	if err != nil {
		return nil, err
	}
	return &Matrix[T]{base: b}, nil
}
