package eventstudio

import (
	"fmt"
	"reflect"
)

// ReferenceStrength controls how a station holds on to a listener.
type ReferenceStrength int

const (
	// Strong makes the station an owner of the listener: it stays registered
	// and callable until it is removed.
	Strong ReferenceStrength = iota
	// Soft holds the listener without keeping it alive. The Go collector has
	// no memory-pressure policy, so Soft behaves exactly like Weak.
	Soft
	// Weak holds the listener without keeping it alive. Once nothing else
	// references it, the entry is purged on the next broadcast.
	//
	// The runtime packs pointer-free objects smaller than 16 bytes together
	// and only frees the whole block, so such a listener may never be seen
	// as unreachable. Weak and Soft reject those types with
	// ErrUnsupportedStrength; add a field or hold them Strong.
	Weak
)

// minWeakSize is the smallest pointer-free size the runtime allocates on its
// own, and so can reclaim individually.
const minWeakSize = 16

// String returns the lower-case name of the strength.
func (s ReferenceStrength) String() string {
	switch s {
	case Strong:
		return "strong"
	case Soft:
		return "soft"
	case Weak:
		return "weak"
	default:
		return fmt.Sprintf("ReferenceStrength(%d)", int(s))
	}
}

// Reference wraps referent in an Entity of the given strength.
func Reference[T any](strength ReferenceStrength, referent *T) (Entity[*T], error) {
	if referent == nil {
		return nil, ErrNilListener
	}
	switch strength {
	case Strong:
		return strongEntity[T]{referent: referent}, nil
	case Soft, Weak:
		if t := reflect.TypeFor[T](); !reclaimable(t) {
			return nil, fmt.Errorf("%w: %v needs %v to hold a pointer or span %d bytes",
				ErrUnsupportedStrength, strength, t, minWeakSize)
		}
		return newWeakEntity(referent), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedStrength, strength)
	}
}

// reclaimable reports whether values of t are allocated on their own, so a
// weak pointer to one is cleared once it is unreachable.
func reclaimable(t reflect.Type) bool {
	return t.Size() >= minWeakSize || hasPointers(t)
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.Interface, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
