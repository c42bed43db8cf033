package eventstudio

import (
	"context"
	"fmt"
	"reflect"
)

// Listener receives events of type T.
//
// Returning ErrStopBroadcast stops the notification of the listeners that
// follow in priority order. Any other non-nil error aborts the broadcast and
// is returned to the broadcaster wrapped in a *ListenerError.
type Listener[T any] interface {
	OnEvent(ctx context.Context, event T) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc[T any] func(ctx context.Context, event T) error

// OnEvent calls f(ctx, event).
func (f ListenerFunc[T]) OnEvent(ctx context.Context, event T) error {
	return f(ctx, event)
}

// notifyFunc delivers one event to a resolved listener.
type notifyFunc func(ctx context.Context, event any) error

// handle is the registry's view of a registered listener.
type handle interface {
	// resolve returns a callable for the listener, or false once it was reclaimed.
	resolve() (notifyFunc, bool)
	// refersTo reports whether the live listener is the given one.
	refersTo(listener any) bool
}

// entityHandle invokes a listener of concrete type *L held by an Entity.
// invoke must not capture the listener so weak entities can be reclaimed.
type entityHandle[L any] struct {
	entity Entity[*L]
	invoke func(target *L, ctx context.Context, event any) error
}

func (h *entityHandle[L]) resolve() (notifyFunc, bool) {
	target, ok := h.entity.Get()
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, event any) error {
		return h.invoke(target, ctx, event)
	}, true
}

func (h *entityHandle[L]) refersTo(listener any) bool {
	candidate, ok := listener.(*L)
	if !ok {
		return false
	}
	target, alive := h.entity.Get()
	return alive && target == candidate
}

// Binding is a type-erased listener ready to be registered on a station.
// Build one with Bind, BindFunc or BindMethod.
type Binding struct {
	eventType reflect.Type
	listener  any
	reference func(strength ReferenceStrength) (handle, error)
}

// EventType returns the event type inferred from the listener's signature.
func (b Binding) EventType() reflect.Type {
	return b.eventType
}

// Listener returns the value identifying the listener for removal.
func (b Binding) Listener() any {
	return b.listener
}

// IsZero reports whether b was built by one of the Bind constructors.
func (b Binding) IsZero() bool {
	return b.reference == nil
}

// String implements fmt.Stringer.
func (b Binding) String() string {
	if b.IsZero() {
		return "Binding(<nil>)"
	}
	return fmt.Sprintf("Binding(%T on %v)", b.listener, b.eventType)
}

// Bind wraps a pointer listener. Any reference strength can be used with the
// resulting Binding; with Weak or Soft the caller must keep l reachable for as
// long as it should be notified, and L must hold a pointer or span at least
// 16 bytes (see Weak).
//
// Listener identity is the pointer l, so L must not be zero-size: registering
// such a Binding fails with ErrZeroSizeListener.
//
//	studio.Add(ctx, eventstudio.Bind[OrderPlaced](audit), 0, eventstudio.Weak)
func Bind[T any, L any, P interface {
	*L
	Listener[T]
}](l P) Binding {
	if (*L)(l) == nil {
		return Binding{}
	}
	if t := reflect.TypeFor[L](); t.Size() == 0 {
		return rejectedBinding(reflect.TypeFor[T](), l, fmt.Errorf("%w: %v", ErrZeroSizeListener, t))
	}
	return Binding{
		eventType: reflect.TypeFor[T](),
		listener:  l,
		reference: func(strength ReferenceStrength) (handle, error) {
			entity, err := Reference(strength, (*L)(l))
			if err != nil {
				return nil, err
			}
			return &entityHandle[L]{
				entity: entity,
				invoke: func(target *L, ctx context.Context, event any) error {
					return P(target).OnEvent(ctx, event.(T))
				},
			}, nil
		},
	}
}

// rejectedBinding is a Binding whose registration always fails with err.
func rejectedBinding(eventType reflect.Type, listener any, err error) Binding {
	return Binding{
		eventType: eventType,
		listener:  listener,
		reference: func(ReferenceStrength) (handle, error) {
			return nil, err
		},
	}
}

// funcListener gives a function listener an identity.
type funcListener[T any] struct {
	fn func(ctx context.Context, event T) error
}

// BindFunc wraps a function listener. Functions have no owner the station
// could observe, so they can only be registered Strong. Remove them with
// RemoveInferred(b) or by EntryID.
func BindFunc[T any](fn func(ctx context.Context, event T) error) Binding {
	if fn == nil {
		return Binding{}
	}
	holder := &funcListener[T]{fn: fn}
	return Binding{
		eventType: reflect.TypeFor[T](),
		listener:  holder,
		reference: func(strength ReferenceStrength) (handle, error) {
			if strength != Strong {
				return nil, fmt.Errorf("%w: function listeners must be %v, got %v", ErrUnsupportedStrength, Strong, strength)
			}
			entity, err := Reference(strength, holder)
			if err != nil {
				return nil, err
			}
			return &entityHandle[funcListener[T]]{
				entity: entity,
				invoke: func(target *funcListener[T], ctx context.Context, event any) error {
					return target.fn(ctx, event.(T))
				},
			}, nil
		},
	}
}

// BindMethod wraps a method of bean given as a method expression. The bean is
// the listener identity and the referent held with the chosen strength, so
// the same size rules as Bind apply to B.
//
//	eventstudio.BindMethod(view, (*View).OnRefresh)
func BindMethod[T any, B any](bean *B, method func(*B, context.Context, T) error) Binding {
	if bean == nil || method == nil {
		return Binding{}
	}
	if t := reflect.TypeFor[B](); t.Size() == 0 {
		return rejectedBinding(reflect.TypeFor[T](), bean, fmt.Errorf("%w: %v", ErrZeroSizeListener, t))
	}
	return Binding{
		eventType: reflect.TypeFor[T](),
		listener:  bean,
		reference: func(strength ReferenceStrength) (handle, error) {
			entity, err := Reference(strength, bean)
			if err != nil {
				return nil, err
			}
			return &entityHandle[B]{
				entity: entity,
				invoke: func(target *B, ctx context.Context, event any) error {
					return method(target, ctx, event.(T))
				},
			}, nil
		},
	}
}

// Descriptor describes one listener registration produced by a ListenerSource.
type Descriptor struct {
	// EventType overrides the type inferred from Binding when set.
	EventType reflect.Type
	// Priority orders delivery, lower first.
	Priority int
	// Strength controls how the station holds the listener.
	Strength ReferenceStrength
	// Station names the target station. Empty means the source's station.
	Station string
	// Binding is the listener.
	Binding Binding
}

func (d Descriptor) eventType() reflect.Type {
	if d.EventType != nil {
		return d.EventType
	}
	return d.Binding.EventType()
}

// ListenerSource is implemented by values that declare their own listeners.
type ListenerSource interface {
	EventListeners() []Descriptor
}

// StationNamer is optionally implemented by a ListenerSource to name the
// station its descriptors default to.
type StationNamer interface {
	StationName() string
}
