package portage

import (
	"fmt"
	"sync/atomic"

	"github.com/chazu/portage/codec"
)

// Rc is a single-goroutine reference-counted owner. Clone adds a handle to
// the same cell, Drop releases one; when the count reaches zero the cell's
// contents are cleared so use through a stale handle fails fast rather
// than quietly. Rc must not be shared across goroutines — that discipline
// is the caller's, not checked at runtime. Use Arc where handles cross
// goroutines.
//
// Serialization snapshots the contents; a deserialized Rc is a fresh cell
// with a count of one, never a revived share of the original.
type Rc[T any] struct {
	cell *rcCell[T]
}

type rcCell[T any] struct {
	refs int
	v    T
}

// NewRc returns an Rc owning v with a count of one.
func NewRc[T any](v T) Rc[T] {
	return Rc[T]{cell: &rcCell[T]{refs: 1, v: v}}
}

// Elem returns the shared value.
func (r Rc[T]) Elem() T { return r.cell.v }

// Clone returns a new handle to the same cell and increments the count.
func (r Rc[T]) Clone() Rc[T] {
	r.cell.refs++
	return r
}

// Drop releases this handle, clearing the cell when the count reaches
// zero. Dropping below zero panics: it means a handle was dropped twice.
func (r Rc[T]) Drop() {
	r.cell.refs--
	if r.cell.refs < 0 {
		panic("portage: Rc dropped more times than cloned")
	}
	if r.cell.refs == 0 {
		var zero T
		r.cell.v = zero
	}
}

// Refs returns the current handle count.
func (r Rc[T]) Refs() int { return r.cell.refs }

func (r Rc[T]) String() string { return fmt.Sprintf("%v", r.cell.v) }

// MarshalCBOR implements cbor.Marshaler via the wire protocol.
func (r Rc[T]) MarshalCBOR() ([]byte, error) {
	return Serialize(r.cell.v, codec.CBOR())
}

// UnmarshalCBOR implements cbor.Unmarshaler via the wire protocol.
func (r *Rc[T]) UnmarshalCBOR(data []byte) error {
	v, err := Deserialize[T](data, codec.CBOR())
	if err != nil {
		return err
	}
	r.cell = &rcCell[T]{refs: 1, v: v}
	return nil
}

// MarshalJSON implements json.Marshaler via the wire protocol.
func (r Rc[T]) MarshalJSON() ([]byte, error) {
	return Serialize(r.cell.v, codec.JSON())
}

// UnmarshalJSON implements json.Unmarshaler via the wire protocol.
func (r *Rc[T]) UnmarshalJSON(data []byte) error {
	v, err := Deserialize[T](data, codec.JSON())
	if err != nil {
		return err
	}
	r.cell = &rcCell[T]{refs: 1, v: v}
	return nil
}

// Arc is the atomically counted variant of Rc, safe to clone and drop from
// independent goroutines. The contained value itself is not synchronized;
// only the handle count is.
type Arc[T any] struct {
	cell *arcCell[T]
}

type arcCell[T any] struct {
	refs atomic.Int64
	v    T
}

// NewArc returns an Arc owning v with a count of one.
func NewArc[T any](v T) Arc[T] {
	c := &arcCell[T]{v: v}
	c.refs.Store(1)
	return Arc[T]{cell: c}
}

// Elem returns the shared value.
func (a Arc[T]) Elem() T { return a.cell.v }

// Clone returns a new handle to the same cell and increments the count.
func (a Arc[T]) Clone() Arc[T] {
	a.cell.refs.Add(1)
	return a
}

// Drop releases this handle, clearing the cell when the count reaches
// zero.
func (a Arc[T]) Drop() {
	switch n := a.cell.refs.Add(-1); {
	case n < 0:
		panic("portage: Arc dropped more times than cloned")
	case n == 0:
		var zero T
		a.cell.v = zero
	}
}

// Refs returns the current handle count.
func (a Arc[T]) Refs() int64 { return a.cell.refs.Load() }

func (a Arc[T]) String() string { return fmt.Sprintf("%v", a.cell.v) }

// MarshalCBOR implements cbor.Marshaler via the wire protocol.
func (a Arc[T]) MarshalCBOR() ([]byte, error) {
	return Serialize(a.cell.v, codec.CBOR())
}

// UnmarshalCBOR implements cbor.Unmarshaler via the wire protocol.
func (a *Arc[T]) UnmarshalCBOR(data []byte) error {
	v, err := Deserialize[T](data, codec.CBOR())
	if err != nil {
		return err
	}
	c := &arcCell[T]{v: v}
	c.refs.Store(1)
	a.cell = c
	return nil
}

// MarshalJSON implements json.Marshaler via the wire protocol.
func (a Arc[T]) MarshalJSON() ([]byte, error) {
	return Serialize(a.cell.v, codec.JSON())
}

// UnmarshalJSON implements json.Unmarshaler via the wire protocol.
func (a *Arc[T]) UnmarshalJSON(data []byte) error {
	v, err := Deserialize[T](data, codec.JSON())
	if err != nil {
		return err
	}
	c := &arcCell[T]{v: v}
	c.refs.Store(1)
	a.cell = c
	return nil
}
