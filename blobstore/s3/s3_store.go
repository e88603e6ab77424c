package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/tensgo/blobstore"
)

var _ blobstore.BlobStore = (*Store)(nil)

// Store keeps checkpoint blobs in an S3 bucket under a root prefix.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	upload   UploadConfig
	uploader *manager.Uploader
}

// NewStore returns a Store for bucket. rootPrefix is prepended to every
// blob name (e.g. "checkpoints/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...func(*UploadConfig)) *Store {
	cfg := DefaultUploadConfig()
	for _, fn := range optFns {
		fn(&cfg)
	}
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(rootPrefix, "/"),
		upload:   cfg,
		uploader: newUploader(client, cfg),
	}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Open issues one HEAD. The returned blob reads the version seen here.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &object{
		store: s,
		key:   key,
		size:  aws.ToInt64(head.ContentLength),
		etag:  aws.ToString(head.ETag),
	}, nil
}

// Create buffers the blob and uploads it on Close. See UploadConfig for
// how the upload is split.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &upload{ctx: ctx, store: s, key: s.key(name)}, nil
}

// Put writes data with a single PUT.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.putObject(ctx, s.key(name), data)
}

// Delete removes name. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List pages through every key under the root prefix starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	root := ""
	if s.prefix != "" {
		root = s.prefix + "/"
	}

	var names []string
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(root + prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if name := strings.TrimPrefix(aws.ToString(obj.Key), root); name != "" {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

func mapErr(err error) error {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return fmt.Errorf("%w: %w", blobstore.ErrNotFound, err)
	}
	return err
}

// object is one version of a blob. Ranged reads carry If-Match so an
// overwrite between Open and a read fails instead of mixing versions.
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
		return 0, errors.New("s3: negative offset")
	}
	if off >= o.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	want := min(int64(len(p)), o.size-off)
	in := &s3.GetObjectInput{
		Bucket: aws.String(o.store.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, off+want-1)),
	}
	if o.etag != "" {
		in.IfMatch = aws.String(o.etag)
	}
	resp, err := o.store.client.GetObject(ctx, in)
	if err != nil {
		return 0, mapErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, err
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}
