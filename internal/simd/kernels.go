package simd

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/tensgo/dtype"
)

// Lane kernels. Every kernel processes len(dst) elements; the other operands
// must be at least that long. The engine calls them with lane-aligned runs of
// whole registers. float32 and float64 runs go to the assembly routines in
// gonum.go, other kinds to the portable loops in generic.go.

// Add computes dst[i] = a[i] + b[i].
func Add[T dtype.Number](dst, a, b []T) {
	switch d := any(dst).(type) {
	case []float64:
		add64(d, any(a).([]float64), any(b).([]float64))
	case []float32:
		add32(d, any(a).([]float32), any(b).([]float32))
	default:
		addGeneric(dst, a, b)
	}
}

// Sub computes dst[i] = a[i] - b[i].
func Sub[T dtype.Number](dst, a, b []T) {
	switch d := any(dst).(type) {
	case []float64:
		sub64(d, any(a).([]float64), any(b).([]float64))
	case []float32:
		sub32(d, any(a).([]float32), any(b).([]float32))
	default:
		subGeneric(dst, a, b)
	}
}

// Mul computes dst[i] = a[i] * b[i].
func Mul[T dtype.Number](dst, a, b []T) {
	if d, ok := any(dst).([]float64); ok {
		mul64(d, any(a).([]float64), any(b).([]float64))
		return
	}
	mulGeneric(dst, a, b)
}

// Div computes dst[i] = a[i] / b[i]. Zero divisors are not guarded.
func Div[T dtype.Number](dst, a, b []T) {
	if d, ok := any(dst).([]float64); ok {
		div64(d, any(a).([]float64), any(b).([]float64))
		return
	}
	divGeneric(dst, a, b)
}

// AddScalar computes dst[i] = a[i] + s.
func AddScalar[T dtype.Number](dst, a []T, s T) {
	if d, ok := any(dst).([]float64); ok {
		addConst64(d, any(a).([]float64), any(s).(float64))
		return
	}
	addScalarGeneric(dst, a, s)
}

// MulScalar computes dst[i] = a[i] * s.
func MulScalar[T dtype.Number](dst, a []T, s T) {
	switch d := any(dst).(type) {
	case []float64:
		scale64(d, any(a).([]float64), any(s).(float64))
	case []float32:
		scale32(d, any(a).([]float32), any(s).(float32))
	default:
		mulScalarGeneric(dst, a, s)
	}
}

// Neg computes dst[i] = -a[i].
func Neg[T dtype.Number](dst, a []T) {
	switch d := any(dst).(type) {
	case []float64:
		scale64(d, any(a).([]float64), -1)
	case []float32:
		scale32(d, any(a).([]float32), -1)
	default:
		negGeneric(dst, a)
	}
}

// Abs computes dst[i] = |a[i]|.
func Abs[T dtype.Number](dst, a []T) {
	a = a[:len(dst)]
	for i := range dst {
		v := a[i]
		if v < 0 {
			v = -v
		}
		dst[i] = v
	}
}

// Square computes dst[i] = a[i] * a[i].
func Square[T dtype.Number](dst, a []T) {
	if d, ok := any(dst).([]float64); ok {
		s := any(a).([]float64)
		mul64(d, s, s)
		return
	}
	squareGeneric(dst, a)
}

// Sum returns the sum of a. Float results depend on the summation order of
// the routine and may differ from a sequential loop in the last bits.
func Sum[T dtype.Number](a []T) T {
	switch s := any(a).(type) {
	case []float64:
		return any(floats.Sum(s)).(T)
	case []float32:
		return any(sum32(s)).(T)
	default:
		return sumGeneric(a)
	}
}

// Dot returns the sum of a[i]*b[i] over len(a) elements.
func Dot[T dtype.Number](a, b []T) T {
	switch s := any(a).(type) {
	case []float64:
		return any(floats.Dot(s, any(b).([]float64)[:len(s)])).(T)
	case []float32:
		return any(dot32(s, any(b).([]float32))).(T)
	default:
		return dotGeneric(a, b)
	}
}

// Sqrt computes dst[i] = sqrt(a[i]).
func Sqrt[T dtype.Number](dst, a []T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = T(math.Sqrt(float64(a[i])))
	}
}

// Exp computes dst[i] = e^a[i].
func Exp[T dtype.Number](dst, a []T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = T(math.Exp(float64(a[i])))
	}
}

// Log computes dst[i] = ln(a[i]).
func Log[T dtype.Number](dst, a []T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = T(math.Log(float64(a[i])))
	}
}

// Pow computes dst[i] = a[i]^p.
func Pow[T dtype.Number](dst, a []T, p float64) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = T(math.Pow(float64(a[i]), p))
	}
}

// Clamp computes dst[i] = min(max(a[i], lo), hi).
func Clamp[T dtype.Number](dst, a []T, lo, hi T) {
	a = a[:len(dst)]
	for i := range dst {
		v := a[i]
		if v < lo {
			v = lo
		} else if v > hi {
			v = hi
		}
		dst[i] = v
	}
}

// HorizontalSum reduces the lanes of a register to one value. acc is used as
// scratch space and holds no meaningful values afterwards.
func HorizontalSum[T dtype.Number](acc []T) T {
	// Pairwise halving keeps the rounding error of wide registers small.
	buf := acc
	for len(buf) > 1 {
		half := len(buf) / 2
		for i := range half {
			buf[i] += buf[i+half]
		}
		if len(buf)%2 == 1 {
			buf[0] += buf[len(buf)-1]
		}
		buf = buf[:half]
	}
	if len(buf) == 0 {
		var zero T
		return zero
	}
	return buf[0]
}

// Extrema holds per-lane running minima and maxima with their element indices.
type Extrema[T dtype.Number] struct {
	Min, Max       []T
	MinIdx, MaxIdx []int
}

// NewExtrema creates lane state for a register of the given width, seeded
// from the register a whose first element sits at index base.
func NewExtrema[T dtype.Number](a []T, base int) *Extrema[T] {
	w := len(a)
	e := &Extrema[T]{
		Min:    make([]T, w),
		Max:    make([]T, w),
		MinIdx: make([]int, w),
		MaxIdx: make([]int, w),
	}
	copy(e.Min, a)
	copy(e.Max, a)
	for i := range w {
		e.MinIdx[i] = base + i
		e.MaxIdx[i] = base + i
	}
	return e
}

// Update folds register a (starting at element index base) into the lanes.
// Strict comparisons keep the earliest index of a tied value per lane.
func (e *Extrema[T]) Update(a []T, base int) {
	a = a[:len(e.Min)]
	for i, v := range a {
		if v < e.Min[i] {
			e.Min[i] = v
			e.MinIdx[i] = base + i
		}
		if v > e.Max[i] {
			e.Max[i] = v
			e.MaxIdx[i] = base + i
		}
	}
}

// Reduce collapses the lanes. Among lanes holding the same extreme value the
// one with the smallest element index wins.
func (e *Extrema[T]) Reduce() (minV T, minIdx int, maxV T, maxIdx int) {
	minV, minIdx = e.Min[0], e.MinIdx[0]
	maxV, maxIdx = e.Max[0], e.MaxIdx[0]
	for i := 1; i < len(e.Min); i++ {
		if v := e.Min[i]; v < minV || (v == minV && e.MinIdx[i] < minIdx) {
			minV, minIdx = v, e.MinIdx[i]
		}
		if v := e.Max[i]; v > maxV || (v == maxV && e.MaxIdx[i] < maxIdx) {
			maxV, maxIdx = v, e.MaxIdx[i]
		}
	}
	return minV, minIdx, maxV, maxIdx
}
