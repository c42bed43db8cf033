package eventstudio

import "weak"

// Entity is a handle to a listener whose lifetime may be owned elsewhere.
// Get reports false once the referent is gone. It never has side effects.
type Entity[T any] interface {
	Get() (T, bool)
}

type strongEntity[T any] struct {
	referent *T
}

func (e strongEntity[T]) Get() (*T, bool) {
	return e.referent, true
}

type weakEntity[T any] struct {
	ref weak.Pointer[T]
}

func newWeakEntity[T any](referent *T) weakEntity[T] {
	return weakEntity[T]{ref: weak.Make(referent)}
}

func (e weakEntity[T]) Get() (*T, bool) {
	referent := e.ref.Value()
	return referent, referent != nil
}
