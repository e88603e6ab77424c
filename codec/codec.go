// Package codec centralizes checkpoint manifest encoding and tensor blob
// compression.
//
// Both Codec and Compressor names are stored in checkpoint manifests, so a
// checkpoint is always decoded with the implementation it was written with.
// Renaming a built-in is a breaking change for persisted data.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}
