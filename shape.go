package portage

import (
	"reflect"
	"sync"
)

// shape classifies a static type into one of the three mutually exclusive
// encoding strategies. Selection happens per static type, never per value:
// the same instantiation of Serialize always takes the same path.
type shape uint8

const (
	// shapeConcrete: a fixed-layout value; the codec's native encoding is
	// the wire format, no envelope.
	shapeConcrete shape = iota + 1
	// shapeSequence: a string or slice; the codec's native length-prefixed
	// sequence encoding, no envelope. Sequences are not dispatch pairs and
	// must bypass the envelope even when handled generically.
	shapeSequence
	// shapeDynamic: an interface type; the envelope protocol.
	shapeDynamic
)

// shapes caches the selected shape per static type.
var shapes sync.Map // reflect.Type -> shape

func shapeOf(t reflect.Type) shape {
	if s, ok := shapes.Load(t); ok {
		return s.(shape)
	}
	var s shape
	switch t.Kind() {
	case reflect.Interface:
		s = shapeDynamic
	case reflect.String, reflect.Slice:
		s = shapeSequence
	default:
		s = shapeConcrete
	}
	shapes.Store(t, s)
	return s
}
