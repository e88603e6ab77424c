package tensgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
	"github.com/hupe1980/tensgo/tensor"
)

var (
	// ErrUseAfterRelease is raised when a released segment is accessed.
	ErrUseAfterRelease = memory.ErrUseAfterRelease
	// ErrLayerUnderflow is returned by PopLayer when no layer is open.
	ErrLayerUnderflow = memory.ErrLayerUnderflow
	// ErrPoolClosed is returned when acquiring from a closed runtime.
	ErrPoolClosed = memory.ErrPoolClosed
	// ErrEmpty is returned by reductions over empty input.
	ErrEmpty = engine.ErrEmpty
	// ErrAmbiguousShape is returned when a shape has more than one unspecified dimension.
	ErrAmbiguousShape = tensor.ErrAmbiguousShape
	// ErrInvalidFormat is returned when a tensor blob is malformed.
	ErrInvalidFormat = tensor.ErrInvalidFormat

	// ErrInvalidArgument marks argument errors normalised by this package.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrSizeMismatch indicates operands of different element counts.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrSizeMismatch struct {
	Left  int
	Right int
	cause error
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("size mismatch: %d != %d", e.Left, e.Right)
}

func (e *ErrSizeMismatch) Unwrap() error { return e.cause }

// ErrInvalidView indicates a strided view that does not fit its base.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvalidView struct {
	Offset, Stride, Length, BaseSize int
	cause                            error
}

func (e *ErrInvalidView) Error() string {
	return fmt.Sprintf("invalid view: offset=%d stride=%d length=%d over %d elements",
		e.Offset, e.Stride, e.Length, e.BaseSize)
}

func (e *ErrInvalidView) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sm *engine.SizeMismatchError
	if errors.As(err, &sm) {
		return &ErrSizeMismatch{Left: sm.Left, Right: sm.Right, cause: err}
	}
	var ve *segment.ViewError
	if errors.As(err, &ve) {
		return &ErrInvalidView{Offset: ve.Offset, Stride: ve.Stride, Length: ve.Length, BaseSize: ve.BaseSize, cause: err}
	}
	var dm *tensor.DimensionMismatchError
	if errors.As(err, &dm) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	var is *tensor.InvalidShapeError
	if errors.As(err, &is) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	var il *memory.InvalidLengthError
	if errors.As(err, &il) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}

// recoverError turns a panic carrying an error into a translated error.
// Other panics are re-raised.
func recoverError(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok {
		*errp = translateError(err)
		return
	}
	panic(r)
}
