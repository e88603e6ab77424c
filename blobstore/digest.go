package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/tensgo/internal/hash"
)

// ErrCorrupt is returned when a blob's size or checksum differs from the
// digest recorded when it was written.
var ErrCorrupt = errors.New("blobstore: blob does not match its digest")

// Digest identifies the exact bytes of a tensor blob. Checkpoint manifests
// record one per tensor.
type Digest struct {
	Size   int64
	CRC32C uint32
}

// ChecksumError reports a blob whose CRC32C differs from its digest.
type ChecksumError struct {
	Name string
	Want uint32
	Got  uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("blobstore: %s: checksum %08x, want %08x", e.Name, e.Got, e.Want)
}

// Unwrap makes ChecksumError match ErrCorrupt.
func (e *ChecksumError) Unwrap() error { return ErrCorrupt }

// Pipe wraps the stream between a blob and its caller, typically for
// IO rate limiting. A nil Pipe passes the stream through.
type Pipe struct {
	Writer func(io.Writer) io.Writer
	Reader func(io.Reader) io.Reader
}

func (p Pipe) writer(w io.Writer) io.Writer {
	if p.Writer == nil {
		return w
	}
	return p.Writer(w)
}

func (p Pipe) reader(r io.Reader) io.Reader {
	if p.Reader == nil {
		return r
	}
	return p.Reader(r)
}

// WriteBlob streams src into a new blob and returns its digest. On any
// error the blob is aborted and never becomes visible.
func WriteBlob(ctx context.Context, store BlobStore, name string, src io.Reader, pipe Pipe) (Digest, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return Digest{}, err
	}

	cw := hash.NewWriter(pipe.writer(w))
	if _, err := io.Copy(cw, src); err != nil {
		_ = w.Abort()
		return Digest{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		_ = w.Abort()
		return Digest{}, err
	}
	if err := w.Sync(); err != nil {
		_ = w.Abort()
		return Digest{}, fmt.Errorf("sync %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return Digest{}, fmt.Errorf("commit %s: %w", name, err)
	}
	return Digest{Size: cw.Written(), CRC32C: cw.Sum32()}, nil
}

// ReadVerified reads the blob name and checks it against want. The size is
// checked before any payload is read.
func ReadVerified(ctx context.Context, store BlobStore, name string, want Digest, pipe Pipe) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	if blob.Size() != want.Size {
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrCorrupt, name, blob.Size(), want.Size)
	}

	data := make([]byte, want.Size)
	if _, err := io.ReadFull(pipe.reader(NewReader(ctx, blob)), data); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if got := hash.CRC32C(data); got != want.CRC32C {
		return nil, &ChecksumError{Name: name, Want: want.CRC32C, Got: got}
	}
	return data, nil
}
