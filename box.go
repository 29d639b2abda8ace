package portage

import (
	"fmt"

	"github.com/chazu/portage/codec"
)

// Box is an exclusive-owner cell whose contents serialize through the
// shape-specialized protocol. Declaring a struct field as *Box[T] (or
// Box[T]) is the drop-in way to make an interface-typed field
// serializable: Box implements the CBOR and JSON marshaler interfaces, so
// it nests inside ordinary structs under either codec with no extra
// plumbing.
//
// T may be any static type; non-interface types simply take the native
// encoding path, so Box[string] and Box[[]uint16] behave like their bare
// counterparts on the wire.
type Box[T any] struct {
	v T
}

// NewBox returns a Box owning v.
func NewBox[T any](v T) *Box[T] {
	return &Box[T]{v: v}
}

// Elem returns the boxed value.
func (b *Box[T]) Elem() T { return b.v }

// Set replaces the boxed value.
func (b *Box[T]) Set(v T) { b.v = v }

// BoxAs converts the contents of a box to concrete type T, reporting
// whether the conversion holds. This is the checked-downcast counterpart
// to boxing a value as Box[any].
func BoxAs[T any, I any](b *Box[I]) (T, bool) {
	v, ok := any(b.v).(T)
	return v, ok
}

func (b Box[T]) String() string   { return fmt.Sprintf("%v", b.v) }
func (b Box[T]) GoString() string { return fmt.Sprintf("portage.Box(%#v)", b.v) }

// MarshalCBOR implements cbor.Marshaler via the wire protocol.
func (b Box[T]) MarshalCBOR() ([]byte, error) {
	return Serialize(b.v, codec.CBOR())
}

// UnmarshalCBOR implements cbor.Unmarshaler via the wire protocol.
func (b *Box[T]) UnmarshalCBOR(data []byte) error {
	v, err := Deserialize[T](data, codec.CBOR())
	if err != nil {
		return err
	}
	b.v = v
	return nil
}

// MarshalJSON implements json.Marshaler via the wire protocol.
func (b Box[T]) MarshalJSON() ([]byte, error) {
	return Serialize(b.v, codec.JSON())
}

// UnmarshalJSON implements json.Unmarshaler via the wire protocol.
func (b *Box[T]) UnmarshalJSON(data []byte) error {
	v, err := Deserialize[T](data, codec.JSON())
	if err != nil {
		return err
	}
	b.v = v
	return nil
}
