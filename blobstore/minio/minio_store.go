package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/tensgo/blobstore"
)

var _ blobstore.BlobStore = (*Store)(nil)

// Store keeps checkpoint blobs in a MinIO (or other S3-compatible) bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore returns a Store for bucket. rootPrefix is prepended to every
// blob name (e.g. "checkpoints/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(rootPrefix, "/")}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *Store) name(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

// Open stats the object once. Reads are ranged GETs bounded by that size.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		return nil, mapErr(err)
	}
	return &object{store: s, key: s.key(name), size: info.Size, etag: info.ETag}, nil
}

// Put uploads data with a Content-MD5 so the server rejects a damaged body.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), putOptions())
	return err
}

// Create buffers the blob and uploads it with a known length on Close.
// Tensor blobs are encoded in memory before they are written, so nothing
// is gained by streaming, and Abort never leaves a dangling upload.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &upload{ctx: ctx, store: s, name: name}, nil
}

// Delete removes name. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !errors.Is(mapErr(err), blobstore.ErrNotFound) {
		return err
	}
	return nil
}

// List returns blob names below the root prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjectsIter(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if n := s.name(obj.Key); n != "" && strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

func putOptions() minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType:    "application/octet-stream",
		SendContentMd5: true,
	}
}

func mapErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return blobstore.ErrNotFound
	}
	return err
}

// object reads one version of a blob. The ETag pins reads to the version
// seen by Open, so a concurrent overwrite fails the read instead of mixing
// bytes from two tensors.
type object struct {
	store *Store
	key   string
	size  int64
	etag  string
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("minio: negative offset")
	}
	if off >= o.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	want := min(int64(len(p)), o.size-off)
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+want-1); err != nil {
		return 0, err
	}
	if o.etag != "" {
		if err := opts.SetMatchETag(o.etag); err != nil {
			return 0, err
		}
	}

	r, err := o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
	if err != nil {
		return 0, mapErr(err)
	}
	defer func() { _ = r.Close() }()

	n, err := io.ReadFull(r, p[:want])
	if err != nil {
		return n, mapErr(err)
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

type upload struct {
	ctx   context.Context //nolint:containedctx // the upload runs on Close, which has no context
	store *Store
	name  string
	buf   bytes.Buffer
	done  bool
}

func (u *upload) Write(p []byte) (int, error) {
	if u.done {
		return 0, io.ErrClosedPipe
	}
	return u.buf.Write(p)
}

func (u *upload) Sync() error { return nil }

func (u *upload) Close() error {
	if u.done {
		return io.ErrClosedPipe
	}
	u.done = true
	return u.store.Put(u.ctx, u.name, u.buf.Bytes())
}

func (u *upload) Abort() error {
	u.done = true
	u.buf.Reset()
	return nil
}
