// Package fingerprint computes stable 64-bit type identifiers.
//
// A fingerprint identifies a Go type across invocations of the same binary
// without depending on where the process image was loaded. Two invocations
// of one binary compute equal fingerprints for the same type; distinct
// types collide only with negligible probability, not never.
//
// The fingerprint mixes two independent signals: an xxh3 hash of a
// package-path-qualified spelling of the type, and the compiler's own type
// hash read from the runtime type descriptor. Mixing both resists
// collisions between structurally identical types that a spelling alone
// could conflate.
package fingerprint

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/zeebo/xxh3"
)

var cache sync.Map // reflect.Type -> uint64

// For returns the fingerprint of T's static type. T may be any type,
// including an interface type.
func For[T any]() uint64 {
	return Of(reflect.TypeOf((*(T))(nil)).Elem())
}

// Of returns the fingerprint of t.
func Of(t reflect.Type) uint64 {
	if fp, ok := cache.Load(t); ok {
		return fp.(uint64)
	}
	var sb strings.Builder
	spell(&sb, t)
	fp := xxh3.HashString(sb.String())
	fp ^= uint64(descriptorHash(t)) * 0x9e3779b97f4a7c15
	cache.Store(t, fp)
	return fp
}

// spell writes a canonical, package-path-qualified spelling of t. Named
// types are spelled by their qualified name alone, which also terminates
// recursion through self-referential types (an unnamed cycle cannot exist
// without a named type on it).
func spell(sb *strings.Builder, t reflect.Type) {
	if name := t.Name(); name != "" {
		if pkg := t.PkgPath(); pkg != "" {
			sb.WriteString(pkg)
			sb.WriteByte('.')
		}
		sb.WriteString(name)
		return
	}
	switch t.Kind() {
	case reflect.Pointer:
		sb.WriteByte('*')
		spell(sb, t.Elem())
	case reflect.Slice:
		sb.WriteString("[]")
		spell(sb, t.Elem())
	case reflect.Array:
		fmt.Fprintf(sb, "[%d]", t.Len())
		spell(sb, t.Elem())
	case reflect.Map:
		sb.WriteString("map[")
		spell(sb, t.Key())
		sb.WriteByte(']')
		spell(sb, t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			sb.WriteString("<-chan ")
		case reflect.SendDir:
			sb.WriteString("chan<- ")
		default:
			sb.WriteString("chan ")
		}
		spell(sb, t.Elem())
	case reflect.Func:
		sb.WriteString("func(")
		for i := 0; i < t.NumIn(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			if t.IsVariadic() && i == t.NumIn()-1 {
				sb.WriteString("...")
				spell(sb, t.In(i).Elem())
				continue
			}
			spell(sb, t.In(i))
		}
		sb.WriteString(")(")
		for i := 0; i < t.NumOut(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			spell(sb, t.Out(i))
		}
		sb.WriteByte(')')
	case reflect.Struct:
		sb.WriteString("struct{")
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(' ')
			spell(sb, f.Type)
			if f.Tag != "" {
				fmt.Fprintf(sb, " %q", string(f.Tag))
			}
		}
		sb.WriteByte('}')
	case reflect.Interface:
		sb.WriteString("interface{")
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			if i > 0 {
				sb.WriteByte(';')
			}
			if m.PkgPath != "" {
				sb.WriteString(m.PkgPath)
				sb.WriteByte('.')
			}
			sb.WriteString(m.Name)
			spell(sb, m.Type)
		}
		sb.WriteByte('}')
	default:
		// Unnamed basic kinds do not exist; fall back to the reflect
		// spelling rather than dropping information.
		sb.WriteString(t.String())
	}
}

// ifaceWords is the two-word layout shared by every interface value,
// including the reflect.Type interface itself.
type ifaceWords struct {
	tab  unsafe.Pointer
	data unsafe.Pointer
}

// descriptor mirrors the leading fields of the runtime type descriptor
// (internal/abi.Type). Only the compiler-computed hash is read.
type descriptor struct {
	size     uintptr
	ptrBytes uintptr
	hash     uint32
}

// descriptorHash returns the compiler's hash for t, which is baked into
// the binary and therefore stable across invocations.
func descriptorHash(t reflect.Type) uint32 {
	w := (*ifaceWords)(unsafe.Pointer(&t))
	return (*descriptor)(w.data).hash
}
