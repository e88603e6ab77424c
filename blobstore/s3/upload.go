package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/tensgo/internal/hash"
)

// UploadConfig controls how tensor blobs are uploaded.
type UploadConfig struct {
	// PartSize is the multipart part size. Blobs smaller than one part are
	// sent with a single PUT. Default: 8 MiB.
	PartSize int64

	// Concurrency is the number of parts uploaded in parallel. Default: 5.
	Concurrency int

	// EnableChecksum asks S3 to verify a CRC32C of every upload.
	// Default: true.
	EnableChecksum bool

	// LeavePartsOnError keeps the parts of a failed multipart upload for
	// inspection instead of aborting it. Default: false.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

// crc32cHeader is the base64 big-endian CRC32C S3 expects in
// x-amz-checksum-crc32c.
func crc32cHeader(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], hash.CRC32C(data))
	return base64.StdEncoding.EncodeToString(b[:])
}

func (s *Store) putObject(ctx context.Context, key string, data []byte) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if s.upload.EnableChecksum {
		in.ChecksumCRC32C = aws.String(crc32cHeader(data))
	}
	_, err := s.client.PutObject(ctx, in)
	return err
}

// multipart hands data to the uploader, which splits it into PartSize
// parts and checksums each one.
func (s *Store) multipart(ctx context.Context, key string, data []byte) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if s.upload.EnableChecksum {
		in.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	_, err := s.uploader.Upload(ctx, in)
	return err
}

// upload collects a tensor blob in memory. Nothing reaches S3 before
// Close, so Abort has no remote state to clean up.
type upload struct {
	ctx   context.Context //nolint:containedctx // the upload runs on Close, which has no context
	store *Store
	key   string
	buf   bytes.Buffer
	done  bool
	err   error
}

func (u *upload) Write(p []byte) (int, error) {
	if u.done {
		return 0, io.ErrClosedPipe
	}
	return u.buf.Write(p)
}

// Sync is a no-op. Data is committed on Close.
func (u *upload) Sync() error { return nil }

// Close uploads the blob. Repeated calls return the first result.
func (u *upload) Close() error {
	if u.done {
		return u.err
	}
	u.done = true

	data := u.buf.Bytes()
	if int64(len(data)) < u.store.upload.PartSize {
		u.err = u.store.putObject(u.ctx, u.key, data)
	} else {
		u.err = u.store.multipart(u.ctx, u.key, data)
	}
	u.buf = bytes.Buffer{}
	return u.err
}

func (u *upload) Abort() error {
	if !u.done {
		u.done = true
		u.buf = bytes.Buffer{}
	}
	return nil
}
