package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutorClosed is returned when work is submitted to a closed WorkerPool.
	ErrExecutorClosed = errors.New("engine: executor closed")
	// ErrEmpty is returned by reductions that are undefined on empty input.
	ErrEmpty = errors.New("engine: empty segment")
)

// SizeMismatchError is returned when binary operands differ in size.
type SizeMismatchError struct {
	Left  int
	Right int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("engine: size mismatch: %d != %d", e.Left, e.Right)
}

// taskPanic carries a recovered callback panic back to the caller.
type taskPanic struct {
	value any
}
