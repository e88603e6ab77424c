package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor compresses whole tensor blobs.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// ErrCorrupt is returned when a compressed frame cannot be decoded.
var ErrCorrupt = errors.New("codec: corrupt compressed data")

// CompressorByName returns a built-in compressor by its stable name.
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "", "none":
		return None{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// None stores data unchanged.
type None struct{}

// Compress returns data.
func (None) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns data.
func (None) Decompress(data []byte) ([]byte, error) { return data, nil }

// Name returns "none".
func (None) Name() string { return "none" }

// Frame format shared by Zstd and LZ4:
// [UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 means Data is stored uncompressed.
const frameHeaderSize = 8

// storeRatio is the compressed/uncompressed ratio above which a frame is
// stored uncompressed.
const storeRatio = 0.9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Zstd compresses with Zstandard. Encoders and decoders are pooled.
type Zstd struct{}

// Compress encodes data into a frame.
func (Zstd) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return frame(data, nil)
	}
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return frame(data, enc.EncodeAll(data, nil))
}

// Decompress decodes a frame produced by Compress.
func (Zstd) Decompress(data []byte) ([]byte, error) {
	return unframe(data, func(src, dst []byte) (int, error) {
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(src, dst[:0])
		return len(out), err
	})
}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// LZ4 compresses with the LZ4 block format.
type LZ4 struct{}

// Compress encodes data into a frame.
func (LZ4) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return frame(data, nil)
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	return frame(data, compressed[:n])
}

// Decompress decodes a frame produced by Compress.
func (LZ4) Decompress(data []byte) ([]byte, error) {
	return unframe(data, func(src, dst []byte) (int, error) {
		return lz4.UncompressBlock(src, dst)
	})
}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

func frame(data, compressed []byte) ([]byte, error) {
	size := uint32(len(data)) //nolint:gosec // blobs are bounded by the tensor reader
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*storeRatio {
		out := make([]byte, frameHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], size)
		copy(out[frameHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, frameHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], size)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed))) //nolint:gosec // smaller than size
	copy(out[frameHeaderSize:], compressed)
	return out, nil
}

func unframe(data []byte, decode func(src, dst []byte) (int, error)) ([]byte, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: frame too small for header", ErrCorrupt)
	}
	size := uint64(binary.LittleEndian.Uint32(data[0:]))
	csize := uint64(binary.LittleEndian.Uint32(data[4:]))
	payload := data[frameHeaderSize:]

	if csize == 0 {
		if uint64(len(payload)) < size {
			return nil, fmt.Errorf("%w: stored frame truncated", ErrCorrupt)
		}
		return payload[:size], nil
	}
	if uint64(len(payload)) < csize {
		return nil, fmt.Errorf("%w: compressed frame truncated", ErrCorrupt)
	}

	out := make([]byte, size)
	n, err := decode(payload[:csize], out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
	}
	return out, nil
}
