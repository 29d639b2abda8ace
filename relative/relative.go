// Package relative re-expresses interface dispatch pointers as offsets
// from a fixed anchor so they survive serialization across invocations of
// the same binary.
//
// Itabs and type descriptors are static linker data. Their absolute
// addresses change between invocations under position-independent loading,
// but the displacement between any two of them is a property of the binary
// image and stays constant. Encoding a dispatch pointer as its displacement
// from one well-known anchor therefore yields a value that any invocation
// of the same binary can turn back into a live pointer.
//
// A Ref carries two validation fields alongside the offset: the build
// fingerprint of the producing binary and the fingerprint of the interface
// type the pointer dispatches for. Both are checked before the offset is
// resolved. What is not — and cannot be — checked is the offset itself:
// Resolve returns a raw pointer that is only meaningful because the caller
// goes on to validate the concrete type fingerprint after use. That gap is
// the protocol's documented trust boundary.
//
// Only dispatch words that are static linker data have stable offsets.
// Interface conversions written in compiled source are static; an itab
// materialized lazily by a reflection-driven assertion lives in
// runtime-allocated memory and is not covered.
package relative

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/chazu/portage/buildid"
	"github.com/google/uuid"
)

var (
	// ErrNilInterface reports an attempt to capture a nil interface value.
	ErrNilInterface = errors.New("nil interface value")
	// ErrBuildMismatch reports a Ref produced by a different binary.
	ErrBuildMismatch = errors.New("build fingerprint mismatch")
	// ErrInterfaceMismatch reports a Ref encoded for a different interface
	// type than the one it is being resolved against.
	ErrInterfaceMismatch = errors.New("interface type fingerprint mismatch")
)

// Ref is a dispatch pointer re-expressed relative to the anchor, tagged
// with enough identity to be validated before resolution.
type Ref struct {
	Build  uuid.UUID `cbor:"1,keyasint" json:"build"`
	Iface  uint64    `cbor:"2,keyasint" json:"iface"`
	Offset int64     `cbor:"3,keyasint" json:"offset"`
}

// anchorable exists only to force one itab into the binary's static data.
type anchorable interface{ anchor() }

type anchor struct{}

func (anchor) anchor() {}

// anchored is the fixed conversion whose itab is the relative base. The
// conversion is written in source, so the itab is emitted by the compiler
// and present at the same image offset in every invocation.
var anchored anchorable = anchor{}

var anchorWord = sync.OnceValue(func() uintptr {
	return uintptr((*ifaceWords)(unsafe.Pointer(&anchored)).tab)
})

// Capture extracts the dispatch word from v and encodes it relative to the
// anchor. I must be an interface type; the shape-selection layer above
// guarantees this by construction. ifaceFP is the fingerprint of I,
// recorded so that a Ref can only be resolved against the interface it was
// captured for.
func Capture[I any](v I, ifaceFP uint64) (Ref, error) {
	w := (*ifaceWords)(unsafe.Pointer(&v))
	if w.tab == nil {
		return Ref{}, fmt.Errorf("relative: capture: %w", ErrNilInterface)
	}
	return Ref{
		Build:  buildid.Get(),
		Iface:  ifaceFP,
		Offset: int64(uintptr(w.tab) - anchorWord()),
	}, nil
}

// Resolve validates the Ref against this process and returns the dispatch
// word it denotes. The build fingerprint is checked first so that a Ref
// from a foreign binary is rejected before any address arithmetic, then
// the interface fingerprint. The returned pointer is raw: it is safe to
// use only under the conditions spelled out in the package documentation.
func (r Ref) Resolve(ifaceFP uint64) (unsafe.Pointer, error) {
	if r.Build != buildid.Get() {
		return nil, fmt.Errorf("relative: %w: ref from build %s, this binary is %s",
			ErrBuildMismatch, r.Build, buildid.Get())
	}
	if r.Iface != ifaceFP {
		return nil, fmt.Errorf("relative: %w: ref encoded for %#x, resolving against %#x",
			ErrInterfaceMismatch, r.Iface, ifaceFP)
	}
	// Anchor and target are both static image data, so the sum is a valid
	// pointer into the loaded binary rather than manufactured garbage.
	return unsafe.Pointer(anchorWord() + uintptr(r.Offset)), nil
}
