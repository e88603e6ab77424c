package distance

import (
	"math"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/segment"
)

// Softmax returns exp(x - max(x)) normalised by its sum. If the sum is zero
// the exponentiated values are returned unnormalised.
func Softmax[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	if x.Size() == 0 {
		return engine.Clone(e, x)
	}

	ex, err := engine.MinMax(e, x)
	if err != nil {
		return nil, err
	}

	shifted, err := engine.AddScalar(e, x, -ex.Max)
	if err != nil {
		return nil, err
	}
	defer shifted.Release()

	out, err := engine.Exp(e, shifted)
	if err != nil {
		return nil, err
	}

	sum := engine.Sum(e, out)
	if sum == 0 {
		return out, nil
	}
	if err := engine.MultiplyScalarInPlace(e, out, 1/sum); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Sigmoid returns 1 / (1 + exp(-x)).
func Sigmoid[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	return unary(e, "sigmoid", x, sigmoid[T])
}

// SigmoidDerivative returns sigmoid(x) * (1 - sigmoid(x)).
func SigmoidDerivative[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	return unary(e, "sigmoid_derivative", x, func(v T) T {
		s := sigmoid(v)
		return s * (1 - s)
	})
}

// Tanh returns the hyperbolic tangent.
func Tanh[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	return unary(e, "tanh", x, func(v T) T { return T(math.Tanh(float64(v))) })
}

// TanhDerivative returns 1 - tanh(x)^2.
func TanhDerivative[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	return unary(e, "tanh_derivative", x, func(v T) T {
		t := T(math.Tanh(float64(v)))
		return 1 - t*t
	})
}

// ReLU returns max(x, 0). NaN inputs stay NaN.
func ReLU[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	return unary(e, "relu", x, func(v T) T {
		if v <= 0 {
			return 0
		}
		return v
	})
}

// ReLUDerivative returns 1 where x > 0 and 0 elsewhere.
func ReLUDerivative[T dtype.Float](e *engine.Engine, x segment.Segment[T]) (*segment.Owned[T], error) {
	return LeakyReLUDerivative(e, x, 0)
}

// LeakyReLU returns x where x > 0 and alpha*x elsewhere.
func LeakyReLU[T dtype.Float](e *engine.Engine, x segment.Segment[T], alpha T) (*segment.Owned[T], error) {
	return unary(e, "leaky_relu", x, func(v T) T {
		if v > 0 {
			return v
		}
		return alpha * v
	})
}

// LeakyReLUDerivative returns 1 where x > 0 and alpha elsewhere.
func LeakyReLUDerivative[T dtype.Float](e *engine.Engine, x segment.Segment[T], alpha T) (*segment.Owned[T], error) {
	return unary(e, "leaky_relu_derivative", x, func(v T) T {
		if v > 0 {
			return 1
		}
		return alpha
	})
}

func sigmoid[T dtype.Float](v T) T {
	return T(1 / (1 + math.Exp(-float64(v))))
}

// unary runs f through the engine. There is no vector routine for these
// functions, so the lane callback applies f across its whole run.
func unary[T dtype.Float](e *engine.Engine, op string, x segment.Segment[T], f func(T) T) (*segment.Owned[T], error) {
	return engine.Transform(e, op, x,
		func(dst, a []T) {
			for i, v := range a {
				dst[i] = f(v)
			}
		},
		f)
}
