package simd

import "github.com/hupe1980/tensgo/dtype"

// Portable loops. They serve every kind without an assembly routine and are
// the reference the float paths are tested against.

func addGeneric[T dtype.Number](dst, a, b []T) {
	n := len(dst)
	a, b = a[:n], b[:n]
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func subGeneric[T dtype.Number](dst, a, b []T) {
	n := len(dst)
	a, b = a[:n], b[:n]
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func mulGeneric[T dtype.Number](dst, a, b []T) {
	n := len(dst)
	a, b = a[:n], b[:n]
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

func divGeneric[T dtype.Number](dst, a, b []T) {
	n := len(dst)
	a, b = a[:n], b[:n]
	for i := range dst {
		dst[i] = a[i] / b[i]
	}
}

func addScalarGeneric[T dtype.Number](dst, a []T, s T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = a[i] + s
	}
}

func mulScalarGeneric[T dtype.Number](dst, a []T, s T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = a[i] * s
	}
}

func negGeneric[T dtype.Number](dst, a []T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = -a[i]
	}
}

func squareGeneric[T dtype.Number](dst, a []T) {
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = a[i] * a[i]
	}
}

// sumGeneric keeps one partial sum per lane of the widest register and
// combines them pairwise at the end.
func sumGeneric[T dtype.Number](a []T) T {
	var acc [maxLanes]T
	i := 0
	for ; i+maxLanes <= len(a); i += maxLanes {
		r := a[i : i+maxLanes : i+maxLanes]
		for j := range acc {
			acc[j] += r[j]
		}
	}
	for j, v := range a[i:] {
		acc[j] += v
	}
	return HorizontalSum(acc[:])
}

func dotGeneric[T dtype.Number](a, b []T) T {
	b = b[:len(a)]
	var acc [maxLanes]T
	i := 0
	for ; i+maxLanes <= len(a); i += maxLanes {
		ra := a[i : i+maxLanes : i+maxLanes]
		rb := b[i : i+maxLanes : i+maxLanes]
		for j := range acc {
			acc[j] += ra[j] * rb[j]
		}
	}
	for j, v := range a[i:] {
		acc[j] += v * b[i+j]
	}
	return HorizontalSum(acc[:])
}

// maxLanes is the number of independent partial sums.
const maxLanes = 16
