// Package blobstore provides the storage abstraction used for tensor
// checkpoints.
//
// BlobStore is the interface for reading and writing data blobs (tensor
// payloads, manifests). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral runs
//   - LocalStore: local filesystem with atomic renames
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - s3.DDBCommitStore: S3 plus DynamoDB conditional writes for CURRENT
//   - minio.Store: MinIO and other S3-compatible services
//
// # Tensor Blobs
//
// WriteBlob streams a tensor blob into a store and returns its Digest
// (size and CRC32C). ReadVerified reads it back and fails with ErrCorrupt
// if the bytes do not match. A blob whose write fails is aborted and never
// becomes visible.
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
