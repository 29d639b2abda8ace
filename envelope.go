package portage

import (
	"fmt"
	"reflect"

	"github.com/chazu/portage/codec"
	"github.com/chazu/portage/fingerprint"
	"github.com/chazu/portage/relative"
)

// envelope is the wire record for a dynamic-dispatch value. Consumption
// order is load-bearing: Ref must be resolved before Payload can be
// decoded, because the concrete type that sizes the payload slot is only
// learnable from the resolved dispatch pointer. Payload is pre-encoded
// with the same codec as the envelope and embedded as a byte string so it
// stays self-delimiting under any codec.
type envelope struct {
	Ref     relative.Ref `cbor:"1,keyasint" json:"ref"`
	Type    uint64       `cbor:"2,keyasint" json:"type"`
	Payload []byte       `cbor:"3,keyasint" json:"payload"`
}

// seal builds the envelope for an interface value: dispatch pointer
// captured relative to the anchor, concrete type fingerprinted, payload
// serialized through the erasure point (the codec reaches the concrete
// value via its runtime type, no static knowledge needed here).
func seal[T any](v T, c codec.Codec) (*envelope, error) {
	t := reflect.TypeOf((*(T))(nil)).Elem()
	ref, err := relative.Capture(v, fingerprint.Of(t))
	if err != nil {
		return nil, fmt.Errorf("portage: serialize %s: %w", t, err)
	}
	concrete := any(v) // repack: the codec must see the concrete type
	payload, err := c.Marshal(concrete)
	if err != nil {
		return nil, fmt.Errorf("portage: serialize %s payload: %w", t, err)
	}
	return &envelope{
		Ref:     ref,
		Type:    fingerprint.Of(reflect.TypeOf(concrete)),
		Payload: payload,
	}, nil
}

// open reverses seal. The resolved dispatch word is trusted just far
// enough to learn the concrete type; the recorded concrete fingerprint is
// re-checked only after the payload has been decoded. See the package
// documentation for why a failure of that late check is fatal.
func open[T any](env *envelope, c codec.Codec) (T, error) {
	var zero T
	t := reflect.TypeOf((*(T))(nil)).Elem()
	word, err := env.Ref.Resolve(fingerprint.Of(t))
	if err != nil {
		return zero, fmt.Errorf("portage: decode %s: %w", t, err)
	}
	concrete := relative.ConcreteType(word, t.NumMethod() > 0)
	if concrete == nil {
		return zero, fmt.Errorf("portage: decode %s: reference resolves to no type", t)
	}
	slot := reflect.New(concrete)
	if err := c.Unmarshal(env.Payload, slot.Interface()); err != nil {
		return zero, fmt.Errorf("portage: decode %s payload: %w", t, err)
	}
	if got := fingerprint.Of(concrete); got != env.Type {
		panic(fmt.Sprintf("portage: concrete type fingerprint mismatch decoding %s: envelope records %#x, resolved table yields %#x (%s); a mis-sized deserialization has already happened, refusing to continue",
			t, env.Type, got, concrete))
	}
	return relative.Fatten[T](word, slot.Elem().Interface()), nil
}
