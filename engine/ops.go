package engine

import (
	"math"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/simd"
	"github.com/hupe1980/tensgo/segment"
)

// Add returns a + b.
func Add[T dtype.Number](e *Engine, a, b segment.Segment[T]) (*segment.Owned[T], error) {
	return Zip(e, "add", a, b, simd.Add[T], func(x, y T) T { return x + y })
}

// Subtract returns a - b.
func Subtract[T dtype.Number](e *Engine, a, b segment.Segment[T]) (*segment.Owned[T], error) {
	return Zip(e, "subtract", a, b, simd.Sub[T], func(x, y T) T { return x - y })
}

// PointwiseMultiply returns a * b elementwise.
func PointwiseMultiply[T dtype.Number](e *Engine, a, b segment.Segment[T]) (*segment.Owned[T], error) {
	return Zip(e, "multiply", a, b, simd.Mul[T], func(x, y T) T { return x * y })
}

// PointwiseDivide returns a / b elementwise. Float kinds follow IEEE 754 on
// division by zero; integer kinds panic.
func PointwiseDivide[T dtype.Number](e *Engine, a, b segment.Segment[T]) (*segment.Owned[T], error) {
	return Zip(e, "divide", a, b, simd.Div[T], func(x, y T) T { return x / y })
}

// AddScalar returns a + s.
func AddScalar[T dtype.Number](e *Engine, a segment.Segment[T], s T) (*segment.Owned[T], error) {
	return Transform(e, "add_scalar", a,
		func(dst, x []T) { simd.AddScalar(dst, x, s) },
		func(x T) T { return x + s })
}

// MultiplyScalar returns a * s.
func MultiplyScalar[T dtype.Number](e *Engine, a segment.Segment[T], s T) (*segment.Owned[T], error) {
	return Transform(e, "multiply_scalar", a,
		func(dst, x []T) { simd.MulScalar(dst, x, s) },
		func(x T) T { return x * s })
}

// Negate returns -a. Unsigned kinds wrap.
func Negate[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	return Transform(e, "negate", a, simd.Neg[T], func(x T) T { return -x })
}

// Abs returns |a|.
func Abs[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	return Transform(e, "abs", a, simd.Abs[T], absScalar[T])
}

func absScalar[T dtype.Number](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Sqrt returns the elementwise square root, computed in float64.
func Sqrt[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	return Transform(e, "sqrt", a, simd.Sqrt[T], func(x T) T { return T(math.Sqrt(float64(x))) })
}

// Squared returns a * a.
func Squared[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	return Transform(e, "squared", a, simd.Square[T], func(x T) T { return x * x })
}

// Exp returns e^a, computed in float64.
func Exp[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	return Transform(e, "exp", a, simd.Exp[T], func(x T) T { return T(math.Exp(float64(x))) })
}

// Log returns the natural logarithm, computed in float64.
func Log[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	return Transform(e, "log", a, simd.Log[T], func(x T) T { return T(math.Log(float64(x))) })
}

// Pow returns a^p, computed in float64.
func Pow[T dtype.Number](e *Engine, a segment.Segment[T], p float64) (*segment.Owned[T], error) {
	return Transform(e, "pow", a,
		func(dst, x []T) { simd.Pow(dst, x, p) },
		func(x T) T { return T(math.Pow(float64(x), p)) })
}

// Clone returns a pooled copy of a.
func Clone[T dtype.Number](e *Engine, a segment.Segment[T]) (*segment.Owned[T], error) {
	out, err := segment.Acquire[T](e.pool, a.Size())
	if err != nil {
		return nil, err
	}
	a.CopySpanTo(out.Slice())
	return out, nil
}

// AddInPlace sets target = target + other.
func AddInPlace[T dtype.Number](e *Engine, target, other segment.Segment[T]) error {
	return MutateZip(e, "add_inplace", target, other, simd.Add[T], func(x, y T) T { return x + y })
}

// SubtractInPlace sets target = target - other.
func SubtractInPlace[T dtype.Number](e *Engine, target, other segment.Segment[T]) error {
	return MutateZip(e, "subtract_inplace", target, other, simd.Sub[T], func(x, y T) T { return x - y })
}

// PointwiseMultiplyInPlace sets target = target * other elementwise.
func PointwiseMultiplyInPlace[T dtype.Number](e *Engine, target, other segment.Segment[T]) error {
	return MutateZip(e, "multiply_inplace", target, other, simd.Mul[T], func(x, y T) T { return x * y })
}

// AddScalarInPlace sets target = target + s.
func AddScalarInPlace[T dtype.Number](e *Engine, target segment.Segment[T], s T) error {
	return Mutate(e, "add_scalar_inplace", target,
		func(dst, x []T) { simd.AddScalar(dst, x, s) },
		func(x T) T { return x + s })
}

// MultiplyScalarInPlace sets target = target * s.
func MultiplyScalarInPlace[T dtype.Number](e *Engine, target segment.Segment[T], s T) error {
	return Mutate(e, "multiply_scalar_inplace", target,
		func(dst, x []T) { simd.MulScalar(dst, x, s) },
		func(x T) T { return x * s })
}

// ConstrainInPlace clamps every element of target to [lo, hi].
func ConstrainInPlace[T dtype.Number](e *Engine, target segment.Segment[T], lo, hi T) error {
	return Mutate(e, "constrain_inplace", target,
		func(dst, x []T) { simd.Clamp(dst, x, lo, hi) },
		func(x T) T { return min(max(x, lo), hi) })
}

// Sum returns the sum of all elements. Float results are not bit-identical
// across strategies because partial sums are combined in a different order.
func Sum[T dtype.Number](e *Engine, a segment.Segment[T]) T {
	return Reduce(e, "sum", a, simd.Sum[T], func(x T) T { return x })
}

// DotProduct returns the sum of a[i]*b[i].
func DotProduct[T dtype.Number](e *Engine, a, b segment.Segment[T]) (T, error) {
	return ReduceZip(e, "dot", a, b, simd.Dot[T], func(x, y T) T { return x * y })
}

// Average returns the arithmetic mean in float64. It returns ErrEmpty for an
// empty segment.
func Average[T dtype.Number](e *Engine, a segment.Segment[T]) (float64, error) {
	if a.Size() == 0 {
		return 0, ErrEmpty
	}
	return float64(Sum(e, a)) / float64(a.Size()), nil
}
