package engine

import (
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/simd"
	"github.com/hupe1980/tensgo/segment"
)

// Reduce returns the sum of f(s[i]). vec returns the contribution of a
// lane-aligned run of whole registers; scalar maps one element to its
// contribution. Partial sums are combined in a different order per strategy,
// so float results may differ in the last bits between strategies.
func Reduce[T dtype.Number](
	e *Engine, op string, s segment.Segment[T],
	vec func(a []T) T, scalar func(a T) T,
) T {
	a, _ := s.GetSpan(nil)
	n := len(a)
	st := e.Strategy(n)
	start := e.now()
	defer e.observe(op, st, n, start)

	fold := func(lo, hi int) T {
		var sum T
		for _, v := range a[lo:hi] {
			sum += scalar(v)
		}
		return sum
	}

	switch st {
	case StrategyScalar:
		return fold(0, n)
	case StrategyParallel:
		b := e.split(n, 1)
		partials := make([]T, b.count)
		e.run(b, func(block, lo, hi int) {
			partials[block] = fold(lo, hi)
		})
		return sumOf(partials)
	default:
		w := laneWidth[T](e)
		b := e.split(n, w)
		partials := make([]T, b.count)
		e.run(b, func(block, lo, hi int) {
			i := aligned(lo, hi, w)
			var run T
			if i > lo {
				run = vec(a[lo:i:i])
			}
			partials[block] = run + fold(i, hi)
		})
		return sumOf(partials)
	}
}

// ReduceZip returns the sum of f(a[i], b[i]) without materialising the
// intermediate segment.
func ReduceZip[T dtype.Number](
	e *Engine, op string, a, b segment.Segment[T],
	vec func(a, b []T) T, scalar func(a, b T) T,
) (T, error) {
	if a.Size() != b.Size() {
		var zero T
		return zero, &SizeMismatchError{Left: a.Size(), Right: b.Size()}
	}

	as, _ := a.GetSpan(nil)
	bs, _ := b.GetSpan(nil)
	n := len(as)
	st := e.Strategy(n)
	start := e.now()
	defer e.observe(op, st, n, start)

	fold := func(lo, hi int) T {
		var sum T
		for i := lo; i < hi; i++ {
			sum += scalar(as[i], bs[i])
		}
		return sum
	}

	switch st {
	case StrategyScalar:
		return fold(0, n), nil
	case StrategyParallel:
		blk := e.split(n, 1)
		partials := make([]T, blk.count)
		e.run(blk, func(block, lo, hi int) {
			partials[block] = fold(lo, hi)
		})
		return sumOf(partials), nil
	default:
		w := laneWidth[T](e)
		blk := e.split(n, w)
		partials := make([]T, blk.count)
		e.run(blk, func(block, lo, hi int) {
			i := aligned(lo, hi, w)
			var run T
			if i > lo {
				run = vec(as[lo:i:i], bs[lo:i:i])
			}
			partials[block] = run + fold(i, hi)
		})
		return sumOf(partials), nil
	}
}

func sumOf[T dtype.Number](xs []T) T {
	var sum T
	for _, x := range xs {
		sum += x
	}
	return sum
}

// Extremum holds the minimum and maximum of a segment with the index of their
// first occurrence.
type Extremum[T dtype.Number] struct {
	Min      T
	MinIndex int
	Max      T
	MaxIndex int
}

func scanExtremum[T dtype.Number](a []T, base int, ex Extremum[T]) Extremum[T] {
	for i, v := range a {
		if v < ex.Min {
			ex.Min, ex.MinIndex = v, base+i
		}
		if v > ex.Max {
			ex.Max, ex.MaxIndex = v, base+i
		}
	}
	return ex
}

// merge folds a later block into ex; ties keep the earlier index.
func (ex Extremum[T]) merge(o Extremum[T]) Extremum[T] {
	if o.Min < ex.Min {
		ex.Min, ex.MinIndex = o.Min, o.MinIndex
	}
	if o.Max > ex.Max {
		ex.Max, ex.MaxIndex = o.Max, o.MaxIndex
	}
	return ex
}

func seed[T dtype.Number](a []T, base int) Extremum[T] {
	return Extremum[T]{Min: a[0], MinIndex: base, Max: a[0], MaxIndex: base}
}

// MinMax finds the minimum and maximum in one pass. Strict comparisons make
// the first occurrence of a tied extreme win. It returns ErrEmpty for an
// empty segment.
func MinMax[T dtype.Number](e *Engine, s segment.Segment[T]) (Extremum[T], error) {
	a, _ := s.GetSpan(nil)
	n := len(a)
	if n == 0 {
		return Extremum[T]{}, ErrEmpty
	}

	st := e.Strategy(n)
	start := e.now()
	defer e.observe("minmax", st, n, start)

	if st == StrategyScalar {
		return scanExtremum(a[1:], 1, seed(a, 0)), nil
	}

	w := 1
	if st == StrategyVector {
		w = laneWidth[T](e)
	}
	blk := e.split(n, w)
	partials := make([]Extremum[T], blk.count)
	e.run(blk, func(block, lo, hi int) {
		if st == StrategyVector && hi-lo >= w {
			lanes := simd.NewExtrema(a[lo:lo+w], lo)
			i := lo + w
			for ; i+w <= hi; i += w {
				lanes.Update(a[i:i+w], i)
			}
			var ex Extremum[T]
			ex.Min, ex.MinIndex, ex.Max, ex.MaxIndex = lanes.Reduce()
			partials[block] = scanExtremum(a[i:hi], i, ex)
			return
		}
		partials[block] = scanExtremum(a[lo+1:hi], lo+1, seed(a[lo:], lo))
	})

	ex := partials[0]
	for _, p := range partials[1:] {
		ex = ex.merge(p)
	}
	return ex, nil
}

// Search returns the index of the first element equal to value, or -1.
func Search[T dtype.Number](e *Engine, s segment.Segment[T], value T) int {
	a, _ := s.GetSpan(nil)
	n := len(a)
	st := e.Strategy(n)
	start := e.now()
	defer e.observe("search", st, n, start)

	find := func(lo, hi int) int {
		for i := lo; i < hi; i++ {
			if a[i] == value {
				return i
			}
		}
		return -1
	}

	if st == StrategyScalar {
		return find(0, n)
	}

	blk := e.split(n, 1)
	found := make([]int, blk.count)
	e.run(blk, func(block, lo, hi int) {
		found[block] = find(lo, hi)
	})
	for _, idx := range found {
		if idx >= 0 {
			return idx
		}
	}
	return -1
}
