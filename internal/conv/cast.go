package conv

import (
	"fmt"
	"math"
	"math/bits"
)

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// IntToInt32 converts int to int32 safely.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// Uint32ToInt converts uint32 to int safely.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// Product multiplies non-negative dimensions, failing instead of wrapping on
// overflow. The product of no dimensions is 1.
func Product(dims ...int) (int, error) {
	p := uint64(1)
	for _, d := range dims {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension %d", d)
		}
		hi, lo := bits.Mul64(p, uint64(d))
		if hi != 0 || lo > uint64(math.MaxInt) {
			return 0, fmt.Errorf("integer overflow: product of %v exceeds int", dims)
		}
		p = lo
	}
	return int(p), nil
}
