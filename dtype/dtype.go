// Package dtype defines the closed set of element kinds supported by tensgo.
//
// Generic code constrains element types with Number. Code that only knows the
// element type at runtime (deserialization, pool bookkeeping) switches over Kind.
package dtype

import (
	"fmt"
	"strings"
	"unsafe"
)

// Number is the constraint for segment element types.
type Number interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the subset of Number with IEEE semantics.
type Float interface {
	~float32 | ~float64
}

// Kind is the runtime tag of an element type.
type Kind uint8

const (
	Invalid Kind = iota
	Float32
	Float64
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
)

// Size returns the byte width of one element.
func (k Kind) Size() int {
	switch k {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the kind is a floating point type.
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k >= Float32 && k <= Uint64
}

func (k Kind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses a kind name such as "float32".
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := Float32; k <= Uint64; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return Invalid, false
}

// Of returns the kind of T.
func Of[T Number]() Kind {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	}
	// Named types (~float32 etc.) fall back to their width and class.
	return kindOfUnderlying(zero)
}

func kindOfUnderlying[T Number](zero T) Kind {
	one := T(1)
	isFloat := one/2 != zero
	signed := zero-one < zero
	switch size := unsafe.Sizeof(zero); {
	case isFloat && size == 4:
		return Float32
	case isFloat:
		return Float64
	case signed && size == 1:
		return Int8
	case signed && size == 2:
		return Int16
	case signed && size == 4:
		return Int32
	case signed:
		return Int64
	case size == 1:
		return Uint8
	case size == 2:
		return Uint16
	case size == 4:
		return Uint32
	default:
		return Uint64
	}
}
