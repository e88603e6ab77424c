package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousShape is returned when more than one dimension is Unspecified.
	ErrAmbiguousShape = errors.New("tensor: more than one unspecified dimension")
	// ErrInvalidFormat is returned when a binary blob is malformed.
	ErrInvalidFormat = errors.New("tensor: invalid binary format")
	// ErrUnsupportedKind is returned by ReadAny for unknown element kinds.
	ErrUnsupportedKind = errors.New("tensor: unsupported element kind")
)

// DimensionMismatchError is returned when operand shapes are incompatible.
type DimensionMismatchError struct {
	Op    string
	Left  Shape
	Right Shape
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("tensor: %s: shape %v incompatible with %v", e.Op, e.Left, e.Right)
}

// InvalidShapeError is returned when dimensions do not describe a valid
// tensor of Size elements.
type InvalidShapeError struct {
	Dims   []int
	Size   int
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("tensor: invalid shape %v for %d elements: %s", e.Dims, e.Size, e.Reason)
}
