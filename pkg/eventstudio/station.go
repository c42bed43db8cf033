package eventstudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/observability"
)

// Station routes events to the listeners registered for their concrete type.
//
// Events broadcast while nobody listens for their type are enqueued and
// replayed to the first listener added for that type. Station is safe for
// concurrent use, and listeners may add, remove and broadcast on the station
// that is notifying them.
type Station struct {
	name       string
	listeners  *listeners
	queues     *replayQueues
	supervisor atomic.Pointer[supervisorSlot]

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	onDrop  func(station string, event any)
}

func newStation(name string, cfg *config) *Station {
	s := &Station{
		name:      name,
		listeners: newListeners(),
		queues:    newReplayQueues(cfg.queueCapacity),
		logger:    observability.EnrichLogger(cfg.logger, name),
		metrics:   cfg.metrics,
		spans:     cfg.spans,
		onDrop:    cfg.onDrop,
	}
	s.supervisor.Store(&supervisorSlot{cfg.supervisorFor(name)})
	return s
}

// Name returns the station name.
func (s *Station) Name() string {
	return s.name
}

// String implements fmt.Stringer.
func (s *Station) String() string {
	return "Station[" + s.name + "]"
}

// dispatchResult is the outcome of one pass over the listeners of an event.
type dispatchResult struct {
	delivered   bool
	interrupted bool
	err         error
}

// Broadcast notifies the listeners registered for the concrete type of event,
// in priority order.
//
// The station supervisor inspects the event first. When no listener receives
// it, the event is enqueued for the next listener of that type. Broadcast only
// fails on a nil event or when a listener fails, in which case the error is a
// *ListenerError and the remaining listeners are not notified.
func (s *Station) Broadcast(ctx context.Context, event any) (err error) {
	if event == nil {
		return ErrNilEvent
	}
	eventType := reflect.TypeOf(event)
	typeName := eventType.String()

	done := observability.TimedOperation()
	ctx, span := s.spans.StartBroadcastSpan(ctx, s.name, typeName)
	defer func() {
		s.spans.EndSpanWithError(span, err)
	}()

	if s.inspect(ctx, event, typeName) {
		observability.LogInterrupted(s.logger, typeName, "supervisor")
		s.metrics.RecordInterrupted(ctx, s.name, typeName)
		s.metrics.RecordBroadcast(ctx, s.name, typeName, false, done())
		return nil
	}

	result := s.dispatch(ctx, eventType, event)
	if result.interrupted {
		observability.LogInterrupted(s.logger, typeName, "listener")
		s.metrics.RecordInterrupted(ctx, s.name, typeName)
	}
	s.metrics.RecordBroadcast(ctx, s.name, typeName, result.delivered, done())
	if result.err != nil {
		observability.LogListenerError(s.logger, typeName, result.err)
		return result.err
	}
	return nil
}

// inspect runs the supervisor and reports whether it stopped the broadcast.
func (s *Station) inspect(ctx context.Context, event any, typeName string) bool {
	err := s.supervisor.Load().Inspect(ctx, event)
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrStopBroadcast):
		return true
	default:
		observability.LogSupervisorError(s.logger, typeName, err)
		return false
	}
}

// dispatch walks a snapshot of the listeners for eventType. Listeners whose
// reference was reclaimed are purged on the way. An undelivered event is
// enqueued, unless a listener failed or interrupted the pass. The listener
// that interrupts does not count as a delivery.
func (s *Station) dispatch(ctx context.Context, eventType reflect.Type, event any) dispatchResult {
	typeName := eventType.String()
	snapshot := s.listeners.snapshot(eventType)
	observability.LogBroadcast(s.logger, typeName, len(snapshot))

	env := newEnvelope(event)
	for _, e := range snapshot {
		notify, ok := e.ref.resolve()
		if !ok {
			s.reclaim(ctx, eventType, e.id)
			continue
		}
		err := notify(ctx, env.event)
		if errors.Is(err, ErrStopBroadcast) {
			// Interrupted events are never enqueued
			return dispatchResult{delivered: env.delivered, interrupted: true}
		}
		if err != nil {
			return dispatchResult{
				delivered: env.delivered,
				err: &ListenerError{
					Station:   s.name,
					EventType: eventType,
					Entry:     e.id,
					Err:       err,
				},
			}
		}
		env.markDelivered()
		s.metrics.RecordDelivery(ctx, s.name, typeName)
	}

	if !env.delivered {
		s.enqueue(ctx, eventType, event)
	}
	return dispatchResult{delivered: env.delivered}
}

func (s *Station) reclaim(ctx context.Context, eventType reflect.Type, id EntryID) {
	if s.listeners.removeEntry(eventType, id) {
		typeName := eventType.String()
		observability.LogListenerReclaimed(s.logger, typeName)
		s.metrics.RecordReclaimed(ctx, s.name, typeName)
	}
}

func (s *Station) enqueue(ctx context.Context, eventType reflect.Type, event any) {
	typeName := eventType.String()
	q := s.queues.getOrCreate(eventType)
	if q.offer(event) {
		pending := q.len()
		observability.LogEnqueued(s.logger, typeName, pending)
		s.metrics.RecordQueued(ctx, s.name, typeName)
		s.spans.AddSpanEvent(ctx, "enqueued", attribute.Int("pending", pending))
		return
	}
	observability.LogQueueOverflow(s.logger, typeName, q.capacity)
	s.metrics.RecordDropped(ctx, s.name, typeName)
	s.spans.AddSpanEvent(ctx, "dropped")
	if s.onDrop != nil {
		s.onDrop(s.name, event)
	}
}

// replay drains the queue for eventType in FIFO order. The drain stops at the
// first event nobody received, which is enqueued again at the tail unless
// its pass was interrupted.
func (s *Station) replay(ctx context.Context, eventType reflect.Type) (err error) {
	q := s.queues.get(eventType)
	if q == nil || q.len() == 0 {
		return nil
	}
	typeName := eventType.String()
	ctx, span := s.spans.StartReplaySpan(ctx, s.name, typeName)
	defer func() {
		s.spans.EndSpanWithError(span, err)
	}()

	for {
		event, ok := q.poll()
		if !ok {
			return nil
		}
		s.metrics.RecordReplayed(ctx, s.name, typeName)
		result := s.dispatch(ctx, eventType, event)
		observability.LogReplay(s.logger, typeName, result.delivered)
		if result.interrupted {
			observability.LogInterrupted(s.logger, typeName, "listener")
			s.metrics.RecordInterrupted(ctx, s.name, typeName)
		}
		if result.err != nil {
			observability.LogListenerError(s.logger, typeName, result.err)
			return &ReplayError{Station: s.name, EventType: eventType, Err: result.err}
		}
		if !result.delivered {
			return nil
		}
	}
}

// resolve validates a registration and builds its handle.
func (s *Station) resolve(eventType reflect.Type, b Binding, strength ReferenceStrength) (handle, error) {
	if b.IsZero() {
		return nil, ErrNilListener
	}
	if eventType == nil {
		return nil, ErrNilEventType
	}
	if eventType.Kind() == reflect.Interface {
		return nil, fmt.Errorf("%w: %v is an interface and no event has it as concrete type", ErrUnresolvableType, eventType)
	}
	if !eventType.AssignableTo(b.eventType) {
		return nil, fmt.Errorf("%w: %v cannot be delivered to a listener of %v", ErrTypeMismatch, eventType, b.eventType)
	}
	return b.reference(strength)
}

// Add registers b for events whose concrete type is eventType and replays
// the events enqueued for that type.
//
// The same listener may be added many times and is notified once per
// registration. Listeners with lower priority are notified first; equal
// priorities are notified in registration order.
//
// A *ReplayError is returned when a listener fails during the replay; the
// registration is kept and the returned EntryID is valid.
func (s *Station) Add(ctx context.Context, eventType reflect.Type, b Binding, priority int, strength ReferenceStrength) (EntryID, error) {
	ref, err := s.resolve(eventType, b, strength)
	if err != nil {
		return 0, err
	}
	id := s.listeners.add(pendingEntry{
		eventType: eventType,
		priority:  priority,
		strength:  strength,
		ref:       ref,
	})
	observability.LogListenerAdded(s.logger, eventType.String(), priority, strength.String())
	return id, s.replay(ctx, eventType)
}

// AddInferred registers b for the event type inferred from its signature.
func (s *Station) AddInferred(ctx context.Context, b Binding, priority int, strength ReferenceStrength) (EntryID, error) {
	if b.IsZero() {
		return 0, ErrNilListener
	}
	return s.Add(ctx, b.EventType(), b, priority, strength)
}

// AddAll registers every descriptor in a single critical section, then runs
// one replay per event type involved. Nothing is registered if any
// descriptor is invalid. The Station field of descriptors is ignored.
func (s *Station) AddAll(ctx context.Context, owner any, descriptors []Descriptor) error {
	if len(descriptors) == 0 {
		return nil
	}
	batch := make([]pendingEntry, 0, len(descriptors))
	for i, d := range descriptors {
		ref, err := s.resolve(d.eventType(), d.Binding, d.Strength)
		if err != nil {
			return fmt.Errorf("descriptor %d: %w", i, err)
		}
		batch = append(batch, pendingEntry{
			eventType: d.eventType(),
			priority:  d.Priority,
			strength:  d.Strength,
			ref:       ref,
		})
	}

	updated := s.listeners.addBatch(batch)
	observability.LogListenersAdded(s.logger, fmt.Sprintf("%T", owner), len(batch))

	var errs []error
	for _, eventType := range updated {
		if err := s.replay(ctx, eventType); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove unregisters the first registration of listener for eventType and
// reports whether one was found. listener is the value given to Bind or
// BindMethod, or a Binding. Reclaimed listeners are never found.
func (s *Station) Remove(eventType reflect.Type, listener any) (bool, error) {
	if eventType == nil {
		return false, ErrNilEventType
	}
	if b, ok := listener.(Binding); ok {
		if b.IsZero() {
			return false, ErrNilListener
		}
		listener = b.listener
	}
	if isNil(listener) {
		return false, ErrNilListener
	}
	found := s.listeners.remove(eventType, listener)
	observability.LogListenerRemoved(s.logger, eventType.String(), found)
	return found, nil
}

// RemoveInferred unregisters b from the event type inferred from its signature.
func (s *Station) RemoveInferred(b Binding) (bool, error) {
	if b.IsZero() {
		return false, ErrNilListener
	}
	return s.Remove(b.EventType(), b.listener)
}

// RemoveEntry unregisters the registration with the given id.
func (s *Station) RemoveEntry(eventType reflect.Type, id EntryID) bool {
	if eventType == nil {
		return false
	}
	found := s.listeners.removeEntry(eventType, id)
	observability.LogListenerRemoved(s.logger, eventType.String(), found)
	return found
}

// SetSupervisor replaces the station supervisor.
func (s *Station) SetSupervisor(supervisor Supervisor) error {
	if supervisor == nil {
		return ErrNilSupervisor
	}
	s.supervisor.Store(&supervisorSlot{supervisor})
	return nil
}

// Supervisor returns the current station supervisor.
func (s *Station) Supervisor() Supervisor {
	return s.supervisor.Load().Supervisor
}

// Listeners describes the registrations for eventType in notification order.
func (s *Station) Listeners(eventType reflect.Type) []ListenerInfo {
	return s.listeners.info(eventType)
}

// Pending returns the number of events enqueued for eventType.
func (s *Station) Pending(eventType reflect.Type) int {
	q := s.queues.get(eventType)
	if q == nil {
		return 0
	}
	return q.len()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
