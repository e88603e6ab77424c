package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing immutable data blobs
// (tensor payloads, checkpoint manifests).
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for streaming writes. The blob becomes visible
	// when the writer is closed and never becomes visible when it is
	// aborted.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at off. It follows io.ReaderAt
	// semantics: a short read returns io.EOF.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to durable storage where supported.
	Sync() error
	// Abort discards everything written. Abort after Close is a no-op.
	Abort() error
}

// ReadAll opens name and returns its full content.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	data := make([]byte, blob.Size())
	if len(data) == 0 {
		return data, nil
	}
	n, err := blob.ReadAt(ctx, data, 0)
	if err != nil && (err != io.EOF || n != len(data)) {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Reader adapts a Blob to io.Reader for sequential decoding.
type Reader struct {
	ctx  context.Context //nolint:containedctx // io.Reader has no context parameter
	blob Blob
	off  int64
}

// NewReader returns a sequential reader over blob bound to ctx.
func NewReader(ctx context.Context, blob Blob) *Reader {
	return &Reader{ctx: ctx, blob: blob}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if rest := r.blob.Size() - r.off; int64(len(p)) > rest {
		p = p[:rest]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}
