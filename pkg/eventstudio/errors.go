package eventstudio

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for invalid arguments.
var (
	// ErrBlankStationName indicates a station was requested with an empty or blank name.
	ErrBlankStationName = errors.New("station name cannot be blank")

	// ErrNilEvent indicates Broadcast was called with a nil event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNilListener indicates a nil listener or an empty Binding.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrNilEventType indicates a registration or removal without an event type.
	ErrNilEventType = errors.New("event type cannot be nil")

	// ErrNilSupervisor indicates SetSupervisor was called with nil.
	ErrNilSupervisor = errors.New("supervisor cannot be nil")
)

// Sentinel errors for listener configuration.
var (
	// ErrUnresolvableType indicates the listened event type could not be determined
	// or can never match a broadcast event (interface types).
	ErrUnresolvableType = errors.New("unable to infer the listened event type")

	// ErrTypeMismatch indicates the listener cannot receive the requested event type.
	ErrTypeMismatch = errors.New("listener does not accept event type")

	// ErrUnsupportedStrength indicates a reference strength the listener cannot be held with.
	ErrUnsupportedStrength = errors.New("unsupported reference strength")

	// ErrZeroSizeListener indicates a listener or bean of a zero-size type.
	// Distinct zero-size values may share one address, so they have no identity.
	ErrZeroSizeListener = errors.New("zero-size listener has no identity")
)

// ErrStopBroadcast is returned by a listener to stop notifying the remaining
// listeners of the current event. It is not an error: the dispatch loop
// consumes it and no exported function ever returns it.
//
// A supervisor returning ErrStopBroadcast stops the broadcast before any
// listener is notified.
var ErrStopBroadcast = errors.New("stop broadcast")

// ListenerError wraps an error returned by a listener during a broadcast.
// The listeners following the failing one are not notified.
type ListenerError struct {
	// Station is the name of the station that was broadcasting.
	Station string
	// EventType is the concrete type of the event being delivered.
	EventType reflect.Type
	// Entry identifies the failing registration.
	Entry EntryID
	// Err is the error returned by the listener.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("station %s: listener %d for %v: %v", e.Station, e.Entry, e.EventType, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// ReplayError reports a listener failure while replaying enqueued events.
// The registration that triggered the replay has already been committed.
type ReplayError struct {
	// Station is the name of the station that was replaying.
	Station string
	// EventType is the type whose replay queue was being drained.
	EventType reflect.Type
	// Err is the failure, usually a *ListenerError.
	Err error
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("station %s: replay of %v: %v", e.Station, e.EventType, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ReplayError) Unwrap() error {
	return e.Err
}
