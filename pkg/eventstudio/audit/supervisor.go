package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio"
)

// Supervisor is an eventstudio.Supervisor that appends a Record for every
// inspected event. A failing store is reported to the station, which logs
// it; delivery goes on regardless.
type Supervisor struct {
	store   Store
	station string
	now     func() time.Time
	next    eventstudio.Supervisor
}

var _ eventstudio.Supervisor = (*Supervisor)(nil)

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithClock sets the time source. Default: time.Now
func WithClock(now func() time.Time) SupervisorOption {
	return func(s *Supervisor) {
		s.now = now
	}
}

// WithNext chains another supervisor, inspected after the record is stored.
// Its result is returned as is, so it can stop the broadcast.
func WithNext(next eventstudio.Supervisor) SupervisorOption {
	return func(s *Supervisor) {
		s.next = next
	}
}

// NewSupervisor creates a supervisor recording into store under station.
func NewSupervisor(store Store, station string, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		store:   store,
		station: station,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inspect implements eventstudio.Supervisor.
func (s *Supervisor) Inspect(ctx context.Context, event any) error {
	rec := Record{
		ID:          uuid.NewString(),
		Station:     s.station,
		EventType:   reflect.TypeOf(event).String(),
		Payload:     encode(event),
		InspectedAt: s.now().UTC(),
	}
	if err := s.store.Append(rec); err != nil {
		return fmt.Errorf("audit %s: %w", s.station, err)
	}
	if s.next != nil {
		return s.next.Inspect(ctx, event)
	}
	return nil
}

// Factory returns a supervisor factory for eventstudio.WithDefaultSupervisor,
// so every station records into store.
func Factory(store Store, opts ...SupervisorOption) func(station string) eventstudio.Supervisor {
	return func(station string) eventstudio.Supervisor {
		return NewSupervisor(store, station, opts...)
	}
}

// encode marshals event to JSON, falling back to its %+v rendering for
// values JSON cannot represent (channels, functions, cycles).
func encode(event any) []byte {
	if data, err := json.Marshal(event); err == nil {
		return data
	}
	data, _ := json.Marshal(fmt.Sprintf("%+v", event))
	return data
}
