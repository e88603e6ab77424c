// Package hash provides the CRC32-Castagnoli (CRC32C) checksums used for
// tensor blob integrity and S3 upload checksums.
//
// Go's hash/crc32 uses hardware instructions for the Castagnoli polynomial
// when available (SSE4.2 on x86-64, the CRC extension on ARM64).
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	w := hash.NewWriter(dst)
//	_, _ = io.Copy(w, src)
//	sum := w.Sum32()
package hash
