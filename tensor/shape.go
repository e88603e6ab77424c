package tensor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/tensgo/internal/conv"
)

// Unspecified marks the one dimension Resolve should infer.
const Unspecified = -1

// MaxRank is the highest supported rank.
const MaxRank = 4

// Shape represents the dimensions of a tensor, outermost first.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// TotalSize returns the product of the dimensions.
func (s Shape) TotalSize() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}

// Resolve validates dims against a tensor of size elements. At most one
// dimension may be Unspecified; it is solved as size divided by the product
// of the others. Two or more yield ErrAmbiguousShape.
func Resolve(size int, dims ...int) (Shape, error) {
	if len(dims) < 1 || len(dims) > MaxRank {
		return nil, &InvalidShapeError{Dims: dims, Size: size, Reason: fmt.Sprintf("rank must be 1..%d", MaxRank)}
	}

	unspecified := -1
	known := make([]int, 0, len(dims))
	for i, d := range dims {
		switch {
		case d == Unspecified:
			if unspecified >= 0 {
				return nil, ErrAmbiguousShape
			}
			unspecified = i
		case d < 0:
			return nil, &InvalidShapeError{Dims: dims, Size: size, Reason: "negative dimension"}
		default:
			known = append(known, d)
		}
	}

	product, err := conv.Product(known...)
	if err != nil {
		return nil, &InvalidShapeError{Dims: dims, Size: size, Reason: err.Error()}
	}

	shape := Shape(slices.Clone(dims))
	if unspecified >= 0 {
		if product == 0 || size%product != 0 {
			return nil, &InvalidShapeError{Dims: dims, Size: size, Reason: "cannot infer unspecified dimension"}
		}
		shape[unspecified] = size / product
		return shape, nil
	}

	if product != size {
		return nil, &InvalidShapeError{Dims: dims, Size: size, Reason: fmt.Sprintf("product is %d", product)}
	}
	return shape, nil
}
