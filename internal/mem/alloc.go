package mem

import (
	"unsafe"

	"github.com/hupe1980/tensgo/dtype"
)

// Alignment is the byte alignment of every buffer (one AVX-512 register).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// Aligned allocates a zeroed slice of n elements of T starting on a 64-byte
// boundary.
func Aligned[T dtype.Number](n int) []T {
	if n <= 0 {
		return []T{}
	}
	var zero T
	return View[T](AllocAligned(n * int(unsafe.Sizeof(zero))))
}

// View reinterprets an aligned byte buffer as a slice of T covering
// len(raw)/sizeof(T) elements. raw must come from AllocAligned. An empty raw
// yields an empty, non-nil slice.
func View[T dtype.Number](raw []byte) []T {
	var zero T
	n := len(raw) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return []T{}
	}
	// The alignment of raw satisfies every numeric element type.
	//nolint:gosec // unsafe is required for typed views
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n)
}

// SizeOf returns the byte size of n elements of kind k.
func SizeOf(k dtype.Kind, n int) int64 {
	return int64(k.Size()) * int64(n)
}
