package memory

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tensgo/dtype"
)

var (
	// ErrUseAfterRelease is raised when a released buffer or segment is accessed.
	ErrUseAfterRelease = errors.New("memory: use after release")
	// ErrLayerUnderflow is raised by PopLayer when no layer is pushed.
	ErrLayerUnderflow = errors.New("memory: layer underflow")
	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("memory: pool closed")
	// ErrUnsupportedKind is returned for element kinds the pool cannot allocate.
	ErrUnsupportedKind = errors.New("memory: unsupported element kind")
	// ErrForeignBuffer is raised when a buffer is released into a pool that did not issue it.
	ErrForeignBuffer = errors.New("memory: buffer belongs to another pool")
)

// KindMismatchError is raised when a buffer is viewed as the wrong element type.
type KindMismatchError struct {
	Buffer dtype.Kind
	View   dtype.Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("memory: buffer of kind %s viewed as %s", e.Buffer, e.View)
}

// InvalidLengthError is returned when a negative length is requested.
type InvalidLengthError struct {
	Length int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("memory: invalid length %d", e.Length)
}
