package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type celsius float32

type count uint16

func TestOf(t *testing.T) {
	assert.Equal(t, Float32, Of[float32]())
	assert.Equal(t, Float64, Of[float64]())
	assert.Equal(t, Int8, Of[int8]())
	assert.Equal(t, Int64, Of[int64]())
	assert.Equal(t, Uint8, Of[uint8]())
	assert.Equal(t, Uint64, Of[uint64]())
	assert.Equal(t, Float32, Of[celsius]())
	assert.Equal(t, Uint16, Of[count]())
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind  Kind
		size  int
		float bool
		name  string
	}{
		{Float32, 4, true, "float32"},
		{Float64, 8, true, "float64"},
		{Int16, 2, false, "int16"},
		{Uint32, 4, false, "uint32"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.size, tc.kind.Size())
			assert.Equal(t, tc.float, tc.kind.IsFloat())
			assert.Equal(t, tc.name, tc.kind.String())
			parsed, ok := ParseKind(tc.name)
			assert.True(t, ok)
			assert.Equal(t, tc.kind, parsed)
		})
	}

	assert.False(t, Invalid.Valid())
	assert.Equal(t, 0, Invalid.Size())
	_, ok := ParseKind("complex128")
	assert.False(t, ok)
}
