// Package codec defines the pluggable structured-encoding layer the wire
// protocol writes through. The protocol itself only ever needs Marshal and
// Unmarshal of whole values; everything format-specific stays behind this
// interface.
package codec

// Codec marshals and unmarshals arbitrary Go values. Implementations must
// be stateless or otherwise safe for concurrent use.
type Codec interface {
	// Name identifies the format, e.g. "cbor" or "json".
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
