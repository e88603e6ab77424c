// Package checkpoint persists named sets of tensors in a blobstore.BlobStore.
//
// A checkpoint named "step-10" is laid out as:
//
//	step-10/00000.tensor    compressed tensor blobs, one per tensor
//	step-10/00001.tensor
//	step-10/manifest.json   names, kinds, shapes, sizes and CRC32C checksums
//	CURRENT                 path of the latest committed manifest
//
// Save writes the tensor blobs in parallel, then the manifest, and commits
// CURRENT last. A crash before the commit leaves the previous checkpoint
// current. Load reads CURRENT, the manifest and every blob back into pooled
// segments, verifying checksums on the way.
//
// Blob IO can be rate limited with WithIOLimit.
package checkpoint
