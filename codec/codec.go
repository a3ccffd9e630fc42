// Package codec encodes match rows as JSON.
//
// JSON lines output and the trace column of SQLite output both go through a
// Codec. Codecs never escape HTML characters, so a value like "a<b" is
// written verbatim by every codec.
package codec

// Codec appends the JSON encoding of a value to a caller-owned buffer.
// Implementations must be safe for concurrent use.
type Codec interface {
	Name() string
	Append(dst []byte, v any) ([]byte, error)
}

// Default is the codec used by the match writers.
var Default Codec = GoJSON{}

// Names lists the built-in codec names.
func Names() []string { return []string{"go-json", "json"} }

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

// AppendLine appends v and a trailing newline to dst.
func AppendLine(c Codec, dst []byte, v any) ([]byte, error) {
	out, err := c.Append(dst, v)
	if err != nil {
		return dst, err
	}
	return append(out, '\n'), nil
}

// EncodeString returns the encoding of v as a string.
func EncodeString(c Codec, v any) (string, error) {
	b, err := c.Append(nil, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
