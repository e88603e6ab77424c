package hash

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32C(t *testing.T) {
	data := []byte("hello")
	want := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))

	assert.Equal(t, want, CRC32C(data))

	h := NewCRC32C()
	_, _ = h.Write(data[:2])
	_, _ = h.Write(data[2:])
	assert.Equal(t, want, h.Sum32())
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	_, err := w.Write([]byte("hel"))
	require.NoError(t, err)
	_, err = w.Write([]byte("lo"))
	require.NoError(t, err)

	assert.Equal(t, "hello", buf.String())
	assert.Equal(t, int64(5), w.Written())
	assert.Equal(t, CRC32C([]byte("hello")), w.Sum32())
}
