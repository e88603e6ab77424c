package hash

import (
	"hash"
	"hash/crc32"
	"io"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Writer forwards writes to an underlying writer and keeps a running CRC32C
// of everything written.
type Writer struct {
	w io.Writer
	h hash.Hash32
	n int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: NewCRC32C()}
}

// Write implements io.Writer.
func (cw *Writer) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	_, _ = cw.h.Write(p[:n])
	cw.n += int64(n)
	return n, err
}

// Sum32 returns the checksum of the bytes written so far.
func (cw *Writer) Sum32() uint32 { return cw.h.Sum32() }

// Written returns the number of bytes written so far.
func (cw *Writer) Written() int64 { return cw.n }
