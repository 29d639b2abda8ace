package portage

import (
	"fmt"
	"reflect"

	"github.com/chazu/portage/codec"
)

// Serialize encodes v with c. The strategy is chosen from T's static
// shape: interface types travel as the envelope protocol; strings, slices
// and fixed-layout values travel as the codec's native encoding.
//
// For interface types, T is the interface v will be deserialized as, and
// the concrete value behind v must be of a type the codec can marshal and
// unmarshal by reflection, converted to T somewhere in compiled source (so
// its dispatch table is static binary data).
//
// Sequences keep their native encoding even when the element type is an
// interface, and such output cannot be decoded back, since the codec
// cannot fill interface-typed elements. Use a sequence of boxed elements,
// e.g. []*Box[I], when interface elements must round-trip.
func Serialize[T any](v T, c codec.Codec) ([]byte, error) {
	if shapeOf(reflect.TypeOf((*(T))(nil)).Elem()) == shapeDynamic {
		env, err := seal(v, c)
		if err != nil {
			return nil, err
		}
		data, err := c.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("portage: serialize envelope: %w", err)
		}
		return data, nil
	}
	// Concrete and sequence shapes: the codec's native output is the wire
	// format.
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("portage: serialize %s: %w", reflect.TypeOf((*(T))(nil)).Elem(), err)
	}
	return data, nil
}

// Deserialize decodes a value of static type T from data. For interface
// types this resolves the envelope against the current process and returns
// a live, callable value of T. Mismatched builds, mismatched interface
// types and malformed payloads come back as errors; see the package
// documentation for the one condition that panics instead.
func Deserialize[T any](data []byte, c codec.Codec) (T, error) {
	t := reflect.TypeOf((*(T))(nil)).Elem()
	if shapeOf(t) == shapeDynamic {
		var zero T
		var env envelope
		if err := c.Unmarshal(data, &env); err != nil {
			return zero, fmt.Errorf("portage: decode %s envelope: %w", t, err)
		}
		return open[T](&env, c)
	}
	var v T
	if err := c.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("portage: decode %s: %w", t, err)
	}
	return v, nil
}
