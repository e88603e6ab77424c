package blobstore

import (
	"bytes"
	"context"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in a map. Stored bytes are immutable: Put and
// Close copy in, so later writes to the caller's slice do not leak through.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string][]byte{}}
}

// Open returns a handle on the blob's current content. A later Put of the
// same name does not affect an open handle.
func (m *MemoryStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return NewBytesBlob(data), nil
}

// Create buffers writes and stores them on Close.
func (m *MemoryStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryWriter{commit: func(data []byte) { m.store(name, data) }}, nil
}

// Put stores a copy of data under name.
func (m *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store(name, bytes.Clone(data))
	return nil
}

func (m *MemoryStore) store(name string, data []byte) {
	if data == nil {
		data = []byte{}
	}
	m.mu.Lock()
	m.blobs[name] = data
	m.mu.Unlock()
}

// Delete removes name if present.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

// List returns the sorted names that start with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := slices.Sorted(maps.Keys(m.blobs))
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, prefix)
	}), nil
}

// NewBytesBlob returns a Blob over data. data must not be modified while
// the blob is in use.
func NewBytesBlob(data []byte) Blob {
	return &bytesBlob{r: bytes.NewReader(data)}
}

type bytesBlob struct {
	r *bytes.Reader
}

func (b *bytesBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.r.ReadAt(p, off)
}

func (b *bytesBlob) Size() int64 { return b.r.Size() }

func (b *bytesBlob) Close() error { return nil }

type memoryWriter struct {
	buf    bytes.Buffer
	commit func([]byte)
	done   bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Sync() error { return nil }

func (w *memoryWriter) Close() error {
	if w.done {
		return io.ErrClosedPipe
	}
	w.done = true
	w.commit(bytes.Clone(w.buf.Bytes()))
	return nil
}

func (w *memoryWriter) Abort() error {
	w.done = true
	w.buf.Reset()
	return nil
}
