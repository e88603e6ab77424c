package blobstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LocalStore implements BlobStore using the local file system. Writes go to
// a temporary file that is renamed into place, so readers never observe a
// partial blob.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &localBlob{f: f, size: info.Size()}, nil
}

// Create creates a blob that is renamed into place on Close.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	final := s.path(name)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(final), ".tmp-"+filepath.Base(final)+"-*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{f: f, final: final}, nil
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// List returns all blobs whose slash-separated name has the prefix.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == s.root {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

type localBlob struct {
	f    *os.File
	size int64
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	return b.f.ReadAt(p, off)
}

func (b *localBlob) Close() error {
	return b.f.Close()
}

func (b *localBlob) Size() int64 {
	return b.size
}

type localWritableBlob struct {
	f     *os.File
	final string
	done  bool
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	if w.done {
		return 0, os.ErrClosed
	}
	return w.f.Write(p)
}

func (w *localWritableBlob) Sync() error {
	return w.f.Sync()
}

func (w *localWritableBlob) Close() error {
	if w.done {
		return os.ErrClosed
	}
	w.done = true
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.f.Name())
		return err
	}
	if err := os.Rename(w.f.Name(), w.final); err != nil {
		_ = os.Remove(w.f.Name())
		return err
	}
	return nil
}

// Abort removes the temporary file. The final name is never touched.
func (w *localWritableBlob) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.f.Close()
	return os.Remove(w.f.Name())
}
