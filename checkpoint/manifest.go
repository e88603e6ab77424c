package checkpoint

import (
	"fmt"
	"path"
	"time"

	"github.com/hupe1980/tensgo/blobstore"
	"github.com/hupe1980/tensgo/tensor"
)

const (
	// CurrentName is the blob holding the path of the latest manifest.
	CurrentName = "CURRENT"
	// ManifestName is the manifest blob name inside a checkpoint.
	ManifestName = "manifest.json"
	// FormatVersion is the manifest format written by Save.
	FormatVersion = 1
)

// Manifest describes one committed checkpoint.
type Manifest struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	Codec       string    `json:"codec"`
	Compression string    `json:"compression"`
	Tensors     []Entry   `json:"tensors"`
}

// Entry describes one tensor blob.
type Entry struct {
	Name  string       `json:"name"`
	Kind  string       `json:"kind"`
	Shape tensor.Shape `json:"shape"`
	Blob  string       `json:"blob"`
	// RawSize is the encoded tensor size before compression.
	RawSize int64 `json:"raw_size"`
	// StoredSize is the blob size.
	StoredSize int64 `json:"stored_size"`
	// Checksum is the CRC32C of the stored blob.
	Checksum uint32 `json:"checksum"`
}

func (e Entry) digest() blobstore.Digest {
	return blobstore.Digest{Size: e.StoredSize, CRC32C: e.Checksum}
}

// Entry returns the entry for the named tensor.
func (m *Manifest) Entry(name string) (Entry, bool) {
	for _, e := range m.Tensors {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// TotalStoredSize returns the sum of all blob sizes.
func (m *Manifest) TotalStoredSize() int64 {
	var n int64
	for _, e := range m.Tensors {
		n += e.StoredSize
	}
	return n
}

func manifestPath(name string) string {
	return path.Join(name, ManifestName)
}

func blobPath(name string, i int) string {
	return path.Join(name, fmt.Sprintf("%05d.tensor", i))
}
