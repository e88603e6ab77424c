// Package minio stores checkpoint blobs in MinIO or another S3-compatible
// service through the MinIO client, without the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil {
//	    return err
//	}
//	store := tgminio.NewStore(client, "models", "checkpoints/")
//	m, err := checkpoint.New(store).Save(ctx, "step-1000", tensors)
//
// Blobs are uploaded with a known length on Close and a Content-MD5, so
// an aborted or failed write leaves nothing behind. Open records the
// object's ETag and every ranged read is conditional on it: a blob that is
// overwritten while a checkpoint loads fails the read rather than
// returning bytes from two different tensors.
package minio
