package eventstudio

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// HiddenStation is the default name of the station used by the Studio
// methods that take no station name.
const HiddenStation = "hidden.station"

// Studio is the entry point for applications: a directory of stations plus
// shortcuts for a hidden default station. Create one with New and share it;
// there is no package-level instance.
type Studio struct {
	stations *Stations
	hidden   string
}

// New creates a Studio.
//
// Example:
//
//	studio := eventstudio.New(
//	    eventstudio.WithQueueCapacity(1000),
//	    eventstudio.WithLogger(logger))
func New(opts ...Option) *Studio {
	cfg := newConfig(opts)
	return &Studio{
		stations: newStations(cfg),
		hidden:   cfg.hiddenStation,
	}
}

// Stations returns the station directory.
func (s *Studio) Stations() *Stations {
	return s.stations
}

// HiddenStationName returns the name of the hidden station.
func (s *Studio) HiddenStationName() string {
	return s.hidden
}

// Station returns the named station, creating it if needed.
func (s *Studio) Station(name string) (*Station, error) {
	return s.stations.Station(name)
}

// Add registers b on the hidden station for its inferred event type.
func (s *Studio) Add(ctx context.Context, b Binding, priority int, strength ReferenceStrength) (EntryID, error) {
	return s.AddTo(ctx, s.hidden, b, priority, strength)
}

// AddTo registers b on the named station for its inferred event type.
func (s *Studio) AddTo(ctx context.Context, station string, b Binding, priority int, strength ReferenceStrength) (EntryID, error) {
	st, err := s.stations.Station(station)
	if err != nil {
		return 0, err
	}
	return st.AddInferred(ctx, b, priority, strength)
}

// AddType registers b on the named station for an explicit event type.
func (s *Studio) AddType(ctx context.Context, station string, eventType reflect.Type, b Binding, priority int, strength ReferenceStrength) (EntryID, error) {
	st, err := s.stations.Station(station)
	if err != nil {
		return 0, err
	}
	return st.Add(ctx, eventType, b, priority, strength)
}

// AddListeners registers the listeners declared by source.
//
// Each descriptor goes to its own Station, else to the station named by
// source when it implements StationNamer, else to the hidden station.
// Descriptors are registered with one AddAll call per station, in order of
// first appearance.
func (s *Studio) AddListeners(ctx context.Context, source ListenerSource) error {
	if source == nil {
		return ErrNilListener
	}
	descriptors := source.EventListeners()
	if len(descriptors) == 0 {
		return nil
	}

	fallback := s.hidden
	if namer, ok := source.(StationNamer); ok {
		if name := namer.StationName(); strings.TrimSpace(name) != "" {
			fallback = name
		}
	}

	var order []string
	grouped := make(map[string][]Descriptor)
	for _, d := range descriptors {
		name := d.Station
		if strings.TrimSpace(name) == "" {
			name = fallback
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], d)
	}

	var errs []error
	for _, name := range order {
		st, err := s.stations.Station(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := st.AddAll(ctx, source, grouped[name]); err != nil {
			errs = append(errs, fmt.Errorf("station %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Remove unregisters b from the hidden station.
func (s *Studio) Remove(b Binding) (bool, error) {
	return s.RemoveFrom(s.hidden, b)
}

// RemoveFrom unregisters b from the named station.
func (s *Studio) RemoveFrom(station string, b Binding) (bool, error) {
	st, err := s.stations.Station(station)
	if err != nil {
		return false, err
	}
	return st.RemoveInferred(b)
}

// Broadcast sends event to the hidden station.
func (s *Studio) Broadcast(ctx context.Context, event any) error {
	return s.BroadcastTo(ctx, s.hidden, event)
}

// BroadcastTo sends event to the named station.
func (s *Studio) BroadcastTo(ctx context.Context, station string, event any) error {
	st, err := s.stations.Station(station)
	if err != nil {
		return err
	}
	return st.Broadcast(ctx, event)
}

// BroadcastToEveryStation sends event to every existing station, in name
// order. A failing station does not prevent delivery to the others.
func (s *Studio) BroadcastToEveryStation(ctx context.Context, event any) error {
	if event == nil {
		return ErrNilEvent
	}
	var errs []error
	for _, st := range s.stations.All() {
		if err := st.Broadcast(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Supervisor sets the supervisor of the hidden station.
func (s *Studio) Supervisor(supervisor Supervisor) error {
	return s.SupervisorOf(s.hidden, supervisor)
}

// SupervisorOf sets the supervisor of the named station.
func (s *Studio) SupervisorOf(station string, supervisor Supervisor) error {
	if supervisor == nil {
		return ErrNilSupervisor
	}
	st, err := s.stations.Station(station)
	if err != nil {
		return err
	}
	return st.SetSupervisor(supervisor)
}

// Clear drops the hidden station.
func (s *Studio) Clear() bool {
	return s.stations.Clear(s.hidden)
}

// ClearStation drops the named station.
func (s *Studio) ClearStation(station string) bool {
	return s.stations.Clear(station)
}

// Listen registers a pointer listener on st for events of type T.
func Listen[T any, L any, P interface {
	*L
	Listener[T]
}](ctx context.Context, st *Station, l P, priority int, strength ReferenceStrength) (EntryID, error) {
	return st.AddInferred(ctx, Bind[T, L, P](l), priority, strength)
}

// ListenFunc registers fn on st for events of type T. The registration is Strong.
func ListenFunc[T any](ctx context.Context, st *Station, fn func(context.Context, T) error, priority int) (EntryID, error) {
	return st.AddInferred(ctx, BindFunc(fn), priority, Strong)
}
