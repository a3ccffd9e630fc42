package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is backed by encoding/json.
type JSON struct{}

func (JSON) Name() string { return "json" }

// Append encodes v without HTML escaping and appends it to dst.
func (JSON) Append(dst []byte, v any) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return dst, err
	}
	// Encode terminates every value with a newline.
	out := buf.Bytes()
	return out[:len(out)-1], nil
}
