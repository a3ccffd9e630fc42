package codec

import gojson "github.com/goccy/go-json"

// GoJSON is backed by github.com/goccy/go-json.
type GoJSON struct{}

func (GoJSON) Name() string { return "go-json" }

// Append encodes v without HTML escaping and appends it to dst.
func (GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := gojson.MarshalWithOption(v, gojson.DisableHTMLEscape())
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}
