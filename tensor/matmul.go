package tensor

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/segment"
)

// BLASCutoff is the multiply-add count from which float32 and float64
// products are delegated to gonum.
const BLASCutoff = 32 * 32 * 32

// Multiply returns the matrix product m x o, where
// result[j, i] = sum over k of m[j, k] * o[k, i].
// It returns *DimensionMismatchError unless m.Columns() == o.Rows().
func (m *Matrix[T]) Multiply(e *engine.Engine, o *Matrix[T]) (*Matrix[T], error) {
	n, inner, p := m.shape[0], m.shape[1], o.shape[1]
	if inner != o.shape[0] {
		return nil, &DimensionMismatchError{Op: "multiply", Left: m.shape, Right: o.shape}
	}

	out, err := segment.Acquire[T](e.Pool(), n*p)
	if err != nil {
		return nil, err
	}

	a, _ := m.seg.GetSpan(nil)
	b, _ := o.seg.GetSpan(nil)
	dst := out.Slice()

	if n*inner*p < BLASCutoff || !multiplyBLAS(a, b, dst, n, inner, p) {
		multiplyNaive(e, a, b, dst, n, inner, p)
	}
	return &Matrix[T]{base: base[T]{seg: out, shape: Shape{n, p}}}, nil
}

// multiplyBLAS hands float32 and float64 products to gonum. It reports false
// for other element types.
func multiplyBLAS[T dtype.Number](a, b, dst []T, n, inner, p int) bool {
	if n == 0 || inner == 0 || p == 0 {
		return false
	}
	switch av := any(a).(type) {
	case []float64:
		bv, _ := any(b).([]float64)
		dv, _ := any(dst).([]float64)
		am := mat.NewDense(n, inner, av)
		bm := mat.NewDense(inner, p, bv)
		mat.NewDense(n, p, dv).Mul(am, bm)
		return true
	case []float32:
		bv, _ := any(b).([]float32)
		dv, _ := any(dst).([]float32)
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas32.General{Rows: n, Cols: inner, Stride: inner, Data: av},
			blas32.General{Rows: inner, Cols: p, Stride: p, Data: bv},
			0,
			blas32.General{Rows: n, Cols: p, Stride: p, Data: dv},
		)
		return true
	default:
		return false
	}
}

// multiplyNaive computes the product row by row, splitting rows across the
// engine's executor for large products.
func multiplyNaive[T dtype.Number](e *engine.Engine, a, b, dst []T, n, inner, p int) {
	e.Range(n, n*inner*p, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			row := dst[j*p : (j+1)*p]
			clear(row)
			for k := range inner {
				ajk := a[j*inner+k]
				brow := b[k*p : (k+1)*p]
				for i, bv := range brow {
					row[i] += ajk * bv
				}
			}
		}
	})
}
