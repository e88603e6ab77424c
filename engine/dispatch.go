package engine

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/tensgo/dtype"
)

// blocks partitions [0, n) into count ranges of size elements.
type blocks struct {
	n     int
	size  int
	count int
}

// split plans one block per worker, each a multiple of align elements.
func (e *Engine) split(n, align int) blocks {
	workers := max(1, e.exec.Workers())
	size := (n + workers - 1) / workers
	if align > 1 {
		size = (size + align - 1) / align * align
	}
	size = max(size, 1)
	return blocks{n: n, size: size, count: (n + size - 1) / size}
}

func (b blocks) bounds(i int) (lo, hi int) {
	lo = i * b.size
	return lo, min(lo+b.size, b.n)
}

// run executes body once per block and re-raises the first callback panic on
// the calling goroutine.
func (e *Engine) run(b blocks, body func(block, lo, hi int)) {
	if b.count <= 1 {
		if b.n > 0 {
			body(0, 0, b.n)
		}
		return
	}

	var failed atomic.Pointer[taskPanic]
	e.exec.Run(b.count, func(i int) {
		defer func() {
			if r := recover(); r != nil {
				failed.CompareAndSwap(nil, &taskPanic{value: r})
			}
		}()
		lo, hi := b.bounds(i)
		body(i, lo, hi)
	})

	if p := failed.Load(); p != nil {
		panic(p.value)
	}
}

func (e *Engine) now() time.Time {
	if e.observer == nil {
		return time.Time{}
	}
	return time.Now()
}

func (e *Engine) observe(op string, s Strategy, n int, start time.Time) {
	if e.observer != nil {
		e.observer.OnDispatch(op, s, n, time.Since(start))
	}
}

func laneWidth[T dtype.Number](e *Engine) int {
	return e.LaneWidth(dtype.Of[T]())
}

// aligned returns the end of the longest run of whole w-element registers
// starting at lo that fits before hi.
func aligned(lo, hi, w int) int {
	return lo + (hi-lo)/w*w
}

func scalarMap1[T dtype.Number](dst, a []T, scalar func(T) T) {
	a = a[:len(dst)]
	for i, v := range a {
		dst[i] = scalar(v)
	}
}

func scalarMap2[T dtype.Number](dst, a, b []T, scalar func(T, T) T) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i, v := range a {
		dst[i] = scalar(v, b[i])
	}
}

// map1 computes dst[i] = f(a[i]) with the strategy for len(dst).
func map1[T dtype.Number](e *Engine, op string, dst, a []T, vec func(dst, a []T), scalar func(T) T) {
	n := len(dst)
	s := e.Strategy(n)
	start := e.now()

	switch s {
	case StrategyScalar:
		scalarMap1(dst, a, scalar)
	case StrategyParallel:
		e.run(e.split(n, 1), func(_, lo, hi int) {
			scalarMap1(dst[lo:hi], a[lo:hi], scalar)
		})
	default:
		w := laneWidth[T](e)
		e.run(e.split(n, w), func(_, lo, hi int) {
			i := aligned(lo, hi, w)
			if i > lo {
				vec(dst[lo:i:i], a[lo:i:i])
			}
			scalarMap1(dst[i:hi], a[i:hi], scalar)
		})
	}

	e.observe(op, s, n, start)
}

// map2 computes dst[i] = f(a[i], b[i]) with the strategy for len(dst).
func map2[T dtype.Number](e *Engine, op string, dst, a, b []T, vec func(dst, a, b []T), scalar func(T, T) T) {
	n := len(dst)
	s := e.Strategy(n)
	start := e.now()

	switch s {
	case StrategyScalar:
		scalarMap2(dst, a, b, scalar)
	case StrategyParallel:
		e.run(e.split(n, 1), func(_, lo, hi int) {
			scalarMap2(dst[lo:hi], a[lo:hi], b[lo:hi], scalar)
		})
	default:
		w := laneWidth[T](e)
		e.run(e.split(n, w), func(_, lo, hi int) {
			i := aligned(lo, hi, w)
			if i > lo {
				vec(dst[lo:i:i], a[lo:i:i], b[lo:i:i])
			}
			scalarMap2(dst[i:hi], a[i:hi], b[i:hi], scalar)
		})
	}

	e.observe(op, s, n, start)
}

// Range runs body over blocks of [0, n). The blocks run on the executor when
// the strategy for cost (an element count estimate of the whole job) is not
// scalar, and on the calling goroutine otherwise.
func (e *Engine) Range(n, cost int, body func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if e.Strategy(cost) == StrategyScalar {
		body(0, n)
		return
	}
	e.run(e.split(n, 1), func(_, lo, hi int) {
		body(lo, hi)
	})
}
