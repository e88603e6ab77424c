package checkpoint

import (
	"errors"

	"github.com/hupe1980/tensgo/internal/resource"
)

var (
	// ErrNoCheckpoint is returned by Load when nothing has been committed.
	ErrNoCheckpoint = errors.New("checkpoint: no checkpoint committed")
	// ErrInvalidName is returned for empty checkpoint names or names that
	// contain a path separator.
	ErrInvalidName = errors.New("checkpoint: invalid name")
	// ErrUnsupportedFormat is returned when a manifest names a format
	// version, codec or compressor this build does not know.
	ErrUnsupportedFormat = errors.New("checkpoint: unsupported format")
	// ErrCorrupt is returned when a blob does not match its manifest entry.
	// Checksum mismatches also carry a *blobstore.ChecksumError.
	ErrCorrupt = errors.New("checkpoint: corrupt blob")
	// ErrBufferLimit is returned when a single blob needs more buffer memory
	// than the configured buffer limit.
	ErrBufferLimit = resource.ErrMemoryLimitExceeded
)
