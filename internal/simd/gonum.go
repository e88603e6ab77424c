package simd

import (
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/floats"
)

// Float runs. float64 goes through gonum/floats and float32 through the
// blas32 level 1 routines, which use gonum's SSE/AVX assembly on amd64 and
// its portable loops elsewhere. dst may be the same slice as an operand but
// must not partially overlap one.

func vec32(x []float32) blas32.Vector {
	return blas32.Vector{N: len(x), Inc: 1, Data: x}
}

func same[T any](x, y []T) bool {
	return len(x) > 0 && len(y) > 0 && &x[0] == &y[0]
}

func add64(dst, a, b []float64) {
	n := len(dst)
	floats.AddTo(dst, a[:n], b[:n])
}

func sub64(dst, a, b []float64) {
	n := len(dst)
	floats.SubTo(dst, a[:n], b[:n])
}

func mul64(dst, a, b []float64) {
	n := len(dst)
	floats.MulTo(dst, a[:n], b[:n])
}

func div64(dst, a, b []float64) {
	n := len(dst)
	floats.DivTo(dst, a[:n], b[:n])
}

func scale64(dst, a []float64, s float64) {
	floats.ScaleTo(dst, s, a[:len(dst)])
}

func addConst64(dst, a []float64, s float64) {
	copy(dst, a[:len(dst)])
	floats.AddConst(s, dst)
}

func add32(dst, a, b []float32) {
	if len(dst) == 0 {
		return
	}
	a, b = a[:len(dst)], b[:len(dst)]
	if same(dst, b) {
		a, b = b, a
	}
	copy(dst, a)
	blas32.Axpy(1, vec32(b), vec32(dst))
}

func sub32(dst, a, b []float32) {
	if len(dst) == 0 {
		return
	}
	a, b = a[:len(dst)], b[:len(dst)]
	if same(dst, b) && !same(dst, a) {
		blas32.Scal(-1, vec32(dst))
		blas32.Axpy(1, vec32(a), vec32(dst))
		return
	}
	copy(dst, a)
	blas32.Axpy(-1, vec32(b), vec32(dst))
}

func scale32(dst, a []float32, s float32) {
	// Sscal writes zeros for a zero factor, which would drop NaN and Inf.
	if len(dst) == 0 || s == 0 {
		mulScalarGeneric(dst, a, s)
		return
	}
	copy(dst, a[:len(dst)])
	blas32.Scal(s, vec32(dst))
}

// onesLen bounds the ones vector sum32 dots against.
const onesLen = 1024

var ones32 = func() []float32 {
	o := make([]float32, onesLen)
	for i := range o {
		o[i] = 1
	}
	return o
}()

func sum32(a []float32) float32 {
	var sum float32
	for len(a) > 0 {
		n := min(len(a), onesLen)
		sum += blas32.Dot(vec32(a[:n]), vec32(ones32[:n]))
		a = a[n:]
	}
	return sum
}

func dot32(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return blas32.Dot(vec32(a), vec32(b[:len(a)]))
}
