// Package s3 stores checkpoint blobs in Amazon S3.
//
//	store, err := s3.New(ctx, "models",
//	    s3.WithPrefix("checkpoints/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	m, err := checkpoint.New(store).Save(ctx, "step-1000", tensors)
//
// Tensor blobs are buffered and uploaded on Close: a single PUT below
// UploadConfig.PartSize, a multipart upload above it, both with a CRC32C
// S3 verifies. Open records the ETag, and ranged reads are conditional on
// it.
//
// DDBCommitStore keeps CURRENT as a versioned commit log in DynamoDB so
// concurrent writers cannot overwrite each other's commit, and History
// lists every checkpoint that was ever current.
package s3
