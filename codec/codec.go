// Package codec centralizes manifest and metadata encoding.
//
// Codec selection is a breaking-change boundary: every manifest chunk and
// entry descriptor is persisted with the codec the engine was configured
// with, and sizes used for chunk placement are measured in encoded bytes.
// All built-in codecs produce JSON.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Names lists the stable names accepted by ByName.
func Names() []string { return []string{"json", "go-json"} }

// ByName returns a built-in codec by its stable name.
//
// This is used by configuration layers (CLI flags, environment variables)
// that select a codec by string.
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

// Size returns the encoded length of v. A nil codec selects Default.
func Size(c Codec, v any) (int, error) {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
