package relative

import (
	"reflect"
	"unsafe"
)

// Mirrors of the runtime's interface representation. An interface value is
// two words: word0 is the itab for interfaces with methods or the concrete
// type descriptor for the empty interface; word1 is the data pointer.

type ifaceWords struct {
	tab  unsafe.Pointer
	data unsafe.Pointer
}

// itab mirrors internal/abi.ITab. Only Type is read here; method entries
// are never indexed directly — methods are always invoked through a
// reconstructed interface value so the runtime's calling convention stays
// in charge.
type itab struct {
	inter unsafe.Pointer // *abi.InterfaceType
	typ   unsafe.Pointer // *abi.Type of the concrete type
	hash  uint32
	_     [4]byte
	fun   [1]uintptr
}

// ConcreteType returns the concrete type a resolved dispatch word refers
// to. hasMethods selects the itab layout (the concrete descriptor sits one
// word in) versus the empty-interface layout (the word is the descriptor
// itself). Returns nil if the descriptor word is nil.
//
// The word must come from Ref.Resolve; this function dereferences it and
// is therefore past the validation boundary described in the package
// documentation.
func ConcreteType(word unsafe.Pointer, hasMethods bool) reflect.Type {
	typ := word
	if hasMethods {
		typ = (*itab)(word).typ
	}
	var v any
	(*ifaceWords)(unsafe.Pointer(&v)).tab = typ
	return reflect.TypeOf(v)
}

// Fatten reconstructs an interface value of type I from a resolved
// dispatch word and a deserialized concrete value. v must hold exactly the
// concrete type the dispatch word was built for; packing it through the
// empty interface first lets the runtime decide the data-word shape
// (pointer-shaped types inline, everything else indirect), so the pair
// stays scannable by the garbage collector.
func Fatten[I any](word unsafe.Pointer, v any) I {
	var out I
	w := (*ifaceWords)(unsafe.Pointer(&out))
	w.tab = word
	w.data = (*ifaceWords)(unsafe.Pointer(&v)).data
	return out
}
