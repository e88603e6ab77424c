package tensor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/conv"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/segment"
)

// MaxReadElements bounds the element count Read accepts from a header.
const MaxReadElements = 1 << 31

// stageThreshold is the payload size above which Read buffers a stream of
// unknown length before it acquires the segment.
const stageThreshold = 1 << 20

// lener is implemented by in-memory readers such as *bytes.Reader.
type lener interface {
	Len() int
}

// WriteTo writes the tensor in the binary format described in the package
// documentation.
func (b *base[T]) WriteTo(w io.Writer) (int64, error) {
	header := make([]uint32, 1+len(b.shape))
	header[0] = uint32(len(b.shape)) //nolint:gosec // rank is 1..4
	var err error
	for i, d := range b.shape {
		if header[i+1], err = conv.IntToUint32(d); err != nil {
			return 0, err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return 0, err
	}
	written := int64(4 * len(header))

	span, _ := b.seg.GetSpan(nil)
	if len(span) == 0 {
		return written, nil
	}
	if err := binary.Write(w, binary.LittleEndian, span); err != nil {
		return written, err
	}
	return written + int64(len(span))*int64(b.Kind().Size()), nil
}

// Write writes t to w in the binary format.
func Write[T dtype.Number](w io.Writer, t Tensor[T]) error {
	_, err := t.WriteTo(w)
	return err
}

// ReadShape reads a binary header.
func ReadShape(r io.Reader) (Shape, error) {
	var rank int32
	if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
		return nil, fmt.Errorf("%w: read rank: %w", ErrInvalidFormat, err)
	}
	if rank < 1 || rank > MaxRank {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidFormat, rank)
	}

	dims := make([]uint32, rank)
	if err := binary.Read(r, binary.LittleEndian, dims); err != nil {
		return nil, fmt.Errorf("%w: read dimensions: %w", ErrInvalidFormat, err)
	}

	shape := make(Shape, rank)
	for i, d := range dims {
		v, err := conv.Uint32ToInt(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		shape[i] = v
	}

	n, err := conv.Product(shape...)
	if err != nil || n > MaxReadElements {
		return nil, fmt.Errorf("%w: shape %v exceeds %d elements", ErrInvalidFormat, []int(shape), MaxReadElements)
	}
	return shape, nil
}

// Read decodes a tensor of element type T into a segment acquired from pool.
// The concrete type of the result follows the rank in the header.
//
// The segment is acquired only once the payload is known to be present: an
// in-memory reader must hold enough bytes, and a large payload from any other
// stream is buffered as it arrives.
func Read[T dtype.Number](r io.Reader, pool *memory.Pool) (Tensor[T], error) {
	shape, err := ReadShape(r)
	if err != nil {
		return nil, err
	}

	need := int64(shape.TotalSize()) * int64(dtype.Of[T]().Size())
	switch lr, ok := r.(lener); {
	case ok:
		if left := int64(lr.Len()); left < need {
			return nil, fmt.Errorf("%w: shape %v needs %d bytes, %d left", ErrInvalidFormat, []int(shape), need, left)
		}
	case need > stageThreshold:
		var staged bytes.Buffer
		if _, err := io.CopyN(&staged, r, need); err != nil {
			return nil, fmt.Errorf("%w: read elements: %w", ErrInvalidFormat, err)
		}
		r = &staged
	}

	seg, err := segment.Acquire[T](pool, shape.TotalSize())
	if err != nil {
		return nil, err
	}
	if seg.Size() > 0 {
		if err := binary.Read(r, binary.LittleEndian, seg.Slice()); err != nil {
			seg.Release()
			return nil, fmt.Errorf("%w: read elements: %w", ErrInvalidFormat, err)
		}
	}
	return fromShape[T](seg, shape), nil
}

// ReadAny decodes a tensor whose element kind is known only at run time.
func ReadAny(r io.Reader, pool *memory.Pool, kind dtype.Kind) (Any, error) {
	switch kind {
	case dtype.Float32:
		return Read[float32](r, pool)
	case dtype.Float64:
		return Read[float64](r, pool)
	case dtype.Int8:
		return Read[int8](r, pool)
	case dtype.Int16:
		return Read[int16](r, pool)
	case dtype.Int32:
		return Read[int32](r, pool)
	case dtype.Int64:
		return Read[int64](r, pool)
	case dtype.Uint8:
		return Read[uint8](r, pool)
	case dtype.Uint16:
		return Read[uint16](r, pool)
	case dtype.Uint32:
		return Read[uint32](r, pool)
	case dtype.Uint64:
		return Read[uint64](r, pool)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// As returns t as a Tensor[T] if its element type is T.
func As[T dtype.Number](t Any) (Tensor[T], bool) {
	typed, ok := t.(Tensor[T])
	return typed, ok
}
