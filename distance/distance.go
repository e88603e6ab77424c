package distance

import (
	"math"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/segment"
)

// L1 returns sum(|x|).
func L1[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (T, error) {
	abs, err := engine.Abs(e, x)
	if err != nil {
		return 0, err
	}
	defer abs.Release()

	return engine.Sum(e, abs), nil
}

// L2 returns sqrt(sum(x^2)).
func L2[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (T, error) {
	sq, err := engine.Squared(e, x)
	if err != nil {
		return 0, err
	}
	defer sq.Release()

	return sqrt(engine.Sum(e, sq)), nil
}

// SquaredEuclidean returns sum((a-b)^2).
func SquaredEuclidean[T dtype.Float](e *engine.Engine, a, b segment.Segment[T]) (T, error) {
	diff, err := engine.Subtract(e, a, b)
	if err != nil {
		return 0, err
	}
	defer diff.Release()

	return L2Squared(e, diff)
}

// L2Squared returns sum(x^2).
func L2Squared[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (T, error) {
	sq, err := engine.Squared(e, x)
	if err != nil {
		return 0, err
	}
	defer sq.Release()

	return engine.Sum(e, sq), nil
}

// Euclidean returns sqrt(sum((a-b)^2)).
func Euclidean[T dtype.Float](e *engine.Engine, a, b segment.Segment[T]) (T, error) {
	d, err := SquaredEuclidean(e, a, b)
	if err != nil {
		return 0, err
	}
	return sqrt(d), nil
}

// Manhattan returns sum(|a-b|).
func Manhattan[T dtype.Float](e *engine.Engine, a, b segment.Segment[T]) (T, error) {
	diff, err := engine.Subtract(e, a, b)
	if err != nil {
		return 0, err
	}
	defer diff.Release()

	return L1(e, diff)
}

// MeanSquared returns sum((a-b)^2) / n. Empty operands yield engine.ErrEmpty.
func MeanSquared[T dtype.Float](e *engine.Engine, a, b segment.Segment[T]) (T, error) {
	d, err := SquaredEuclidean(e, a, b)
	if err != nil {
		return 0, err
	}
	if a.Size() == 0 {
		return 0, engine.ErrEmpty
	}
	return d / T(a.Size()), nil
}

// Cosine returns 1 - dot(a,b) / (sqrt(dot(a,a)) * sqrt(dot(b,b))).
func Cosine[T dtype.Float](e *engine.Engine, a, b segment.Segment[T]) (T, error) {
	ab, err := engine.DotProduct(e, a, b)
	if err != nil {
		return 0, err
	}
	aa, _ := engine.DotProduct(e, a, a)
	bb, _ := engine.DotProduct(e, b, b)

	return 1 - ab/(sqrt(aa)*sqrt(bb)), nil
}

// StdDev returns the population standard deviation sqrt(mean((x-mean)^2)).
// A non-nil mean is used instead of computing one.
func StdDev[T dtype.Float](e *engine.Engine, x segment.Segment[T], mean *T) (T, error) {
	if x.Size() == 0 {
		return 0, engine.ErrEmpty
	}

	var m T
	if mean != nil {
		m = *mean
	} else {
		avg, err := engine.Average(e, x)
		if err != nil {
			return 0, err
		}
		m = T(avg)
	}

	centered, err := engine.AddScalar(e, x, -m)
	if err != nil {
		return 0, err
	}
	defer centered.Release()

	ss, err := L2Squared(e, centered)
	if err != nil {
		return 0, err
	}
	return sqrt(ss / T(x.Size())), nil
}

// NormalizeInPlace scales x to unit L2 norm. It reports false and leaves x
// untouched if the norm is zero.
func NormalizeInPlace[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (bool, error) {
	if x.Size() == 0 {
		return false, nil
	}
	norm, err := L2(e, x)
	if err != nil {
		return false, err
	}
	if norm == 0 {
		return false, nil
	}
	return true, engine.MultiplyScalarInPlace(e, x, 1/norm)
}

func sqrt[T dtype.Float](x T) T {
	return T(math.Sqrt(float64(x)))
}
