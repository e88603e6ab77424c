package blobstore

import (
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"io"
	"slices"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	}
}

func TestBlobStoreContract(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			require.NoError(t, store.Put(ctx, "ckpt/v1/a.tensor", []byte("alpha")))
			require.NoError(t, store.Put(ctx, "ckpt/v1/b.tensor", []byte("beta")))
			require.NoError(t, store.Put(ctx, "CURRENT", []byte("ckpt/v1")))

			data, err := ReadAll(ctx, store, "ckpt/v1/a.tensor")
			require.NoError(t, err)
			assert.Equal(t, "alpha", string(data))

			// Put replaces existing content.
			require.NoError(t, store.Put(ctx, "CURRENT", []byte("ckpt/v2")))
			data, err = ReadAll(ctx, store, "CURRENT")
			require.NoError(t, err)
			assert.Equal(t, "ckpt/v2", string(data))

			names, err := store.List(ctx, "ckpt/")
			require.NoError(t, err)
			assert.Equal(t, []string{"ckpt/v1/a.tensor", "ckpt/v1/b.tensor"}, names)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			require.NoError(t, store.Delete(ctx, "ckpt/v1/a.tensor"))
			require.NoError(t, store.Delete(ctx, "ckpt/v1/a.tensor"), "deleting twice is fine")

			_, err = store.Open(ctx, "ckpt/v1/a.tensor")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestBlobStoreStreaming(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			payload := bytes.Repeat([]byte("0123456789"), 1000)

			w, err := store.Create(ctx, "stream.bin")
			require.NoError(t, err)
			for chunk := range slices.Chunk(payload, 333) {
				_, err := w.Write(chunk)
				require.NoError(t, err)
			}
			require.NoError(t, w.Sync())
			require.NoError(t, w.Close())

			blob, err := store.Open(ctx, "stream.bin")
			require.NoError(t, err)
			defer blob.Close()
			assert.Equal(t, int64(len(payload)), blob.Size())

			got, err := io.ReadAll(NewReader(ctx, blob))
			require.NoError(t, err)
			assert.True(t, bytes.Equal(payload, got))

			buf := make([]byte, 4)
			n, err := blob.ReadAt(ctx, buf, int64(len(payload)-2))
			assert.Equal(t, 2, n)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestReadAllCanceled(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(t.Context(), "x", []byte("data")))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := ReadAll(ctx, store, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAbortDiscardsBlob(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			require.NoError(t, store.Put(ctx, "ckpt/00000.tensor", []byte("committed")))

			w, err := store.Create(ctx, "ckpt/00000.tensor")
			require.NoError(t, err)
			_, err = w.Write([]byte("replacement"))
			require.NoError(t, err)
			require.NoError(t, w.Abort())

			data, err := ReadAll(ctx, store, "ckpt/00000.tensor")
			require.NoError(t, err)
			assert.Equal(t, "committed", string(data))
		})
	}
}

func TestWriteBlobDigest(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			payload := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7}, 3000)

			var piped int
			pipe := Pipe{
				Writer: func(w io.Writer) io.Writer { return countingWriter{w: w, n: &piped} },
			}
			d, err := WriteBlob(ctx, store, "ckpt/00001.tensor", bytes.NewReader(payload), pipe)
			require.NoError(t, err)
			assert.Equal(t, Digest{Size: int64(len(payload)), CRC32C: crc32.Checksum(payload, crc32.MakeTable(crc32.Castagnoli))}, d)
			assert.Equal(t, len(payload), piped)

			got, err := ReadVerified(ctx, store, "ckpt/00001.tensor", d, Pipe{})
			require.NoError(t, err)
			assert.True(t, bytes.Equal(payload, got))
		})
	}
}

func TestWriteBlobFailedSourceIsNotVisible(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			src := io.MultiReader(bytes.NewReader([]byte("head")), iotest.ErrReader(errors.New("encoder failed")))

			_, err := WriteBlob(ctx, store, "ckpt/00002.tensor", src, Pipe{})
			require.ErrorContains(t, err, "encoder failed")

			_, err = store.Open(ctx, "ckpt/00002.tensor")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestReadVerifiedRejectsMismatch(t *testing.T) {
	store := NewMemoryStore()
	ctx := t.Context()

	d, err := WriteBlob(ctx, store, "t", bytes.NewReader([]byte("tensor bytes")), Pipe{})
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "t", []byte("tensor bytez")))
	_, err = ReadVerified(ctx, store, "t", d, Pipe{})
	require.ErrorIs(t, err, ErrCorrupt)
	var cerr *ChecksumError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "t", cerr.Name)
	assert.Equal(t, d.CRC32C, cerr.Want)

	require.NoError(t, store.Put(ctx, "t", []byte("tensor")))
	_, err = ReadVerified(ctx, store, "t", d, Pipe{})
	require.ErrorIs(t, err, ErrCorrupt)
	assert.False(t, errors.As(err, &cerr), "size is checked before the checksum")

	_, err = ReadVerified(ctx, store, "missing", d, Pipe{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadVerifiedUsesPipe(t *testing.T) {
	store := NewMemoryStore()
	ctx := t.Context()
	d, err := WriteBlob(ctx, store, "t", bytes.NewReader(make([]byte, 1000)), Pipe{})
	require.NoError(t, err)

	calls := 0
	pipe := Pipe{Reader: func(r io.Reader) io.Reader {
		calls++
		return iotest.OneByteReader(r)
	}}
	got, err := ReadVerified(ctx, store, "t", d, pipe)
	require.NoError(t, err)
	assert.Len(t, got, 1000)
	assert.Equal(t, 1, calls)
}

type countingWriter struct {
	w io.Writer
	n *int
}

func (c countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += n
	return n, err
}
