package segment

import (
	"fmt"

	"github.com/hupe1980/tensgo/memory"
)

// ErrUseAfterRelease is raised when a released segment is accessed.
var ErrUseAfterRelease = memory.ErrUseAfterRelease

// IndexError is raised when an element index is outside the segment.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("segment: index %d out of range [0, %d)", e.Index, e.Size)
}

// ViewError is raised when a strided view does not fit its base segment.
type ViewError struct {
	Offset   int
	Stride   int
	Length   int
	BaseSize int
}

func (e *ViewError) Error() string {
	return fmt.Sprintf("segment: view offset=%d stride=%d length=%d exceeds base size %d",
		e.Offset, e.Stride, e.Length, e.BaseSize)
}
