package codec

import (
	gojson "github.com/goccy/go-json"
)

// JSON returns a JSON codec. It exists both for human-readable wire dumps
// and to demonstrate that the envelope protocol is codec-agnostic.
func JSON() Codec { return jsonCodec{} }

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return gojson.Unmarshal(data, v)
}
