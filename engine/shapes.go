package engine

import (
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/segment"
)

// releaseOnPanic releases out if the surrounding call is panicking.
func releaseOnPanic[T dtype.Number](out *segment.Owned[T]) {
	if r := recover(); r != nil {
		out.Release()
		panic(r)
	}
}

// Transform returns a new pooled segment holding f(src[i]). vec receives
// lane-aligned runs whose length is a multiple of LaneWidth; scalar receives
// single values and must compute the same function.
func Transform[T dtype.Number](
	e *Engine, op string, src segment.Segment[T],
	vec func(dst, a []T), scalar func(a T) T,
) (*segment.Owned[T], error) {
	out, err := segment.Acquire[T](e.pool, src.Size())
	if err != nil {
		return nil, err
	}
	defer releaseOnPanic(out)

	a, _ := src.GetSpan(nil)
	map1(e, op, out.Slice(), a, vec, scalar)
	return out, nil
}

// Zip returns a new pooled segment holding f(a[i], b[i]). Operands of
// different size yield *SizeMismatchError before anything is allocated.
func Zip[T dtype.Number](
	e *Engine, op string, a, b segment.Segment[T],
	vec func(dst, a, b []T), scalar func(a, b T) T,
) (*segment.Owned[T], error) {
	if a.Size() != b.Size() {
		return nil, &SizeMismatchError{Left: a.Size(), Right: b.Size()}
	}

	out, err := segment.Acquire[T](e.pool, a.Size())
	if err != nil {
		return nil, err
	}
	defer releaseOnPanic(out)

	as, _ := a.GetSpan(nil)
	bs, _ := b.GetSpan(nil)
	map2(e, op, out.Slice(), as, bs, vec, scalar)
	return out, nil
}

// Mutate replaces every element of target with f(target[i]).
func Mutate[T dtype.Number](
	e *Engine, op string, target segment.Segment[T],
	vec func(dst, a []T), scalar func(a T) T,
) error {
	span, temp := target.GetSpan(nil)
	map1(e, op, span, span, vec, scalar)
	if temp {
		target.SetSpan(span)
	}
	return nil
}

// MutateZip replaces every element of target with f(target[i], other[i]).
func MutateZip[T dtype.Number](
	e *Engine, op string, target, other segment.Segment[T],
	vec func(dst, a, b []T), scalar func(a, b T) T,
) error {
	if target.Size() != other.Size() {
		return &SizeMismatchError{Left: target.Size(), Right: other.Size()}
	}

	span, temp := target.GetSpan(nil)
	rhs, _ := other.GetSpan(nil)
	map2(e, op, span, span, rhs, vec, scalar)
	if temp {
		target.SetSpan(span)
	}
	return nil
}
