/*
Package eventstudio provides an in-process publish/subscribe bus built
around named stations.

# Overview

A station routes events to the listeners registered for the concrete type
of the event, in priority order. Stations are independent: listeners and
pending events in one station never see another station's traffic.

Features:
  - Priority ordered delivery, stable for equal priorities
  - Strong, Weak and Soft listener references
  - Replay of events broadcast before anyone listened
  - Per-station supervisor inspecting every event
  - Listener driven interruption of a broadcast

# Basic Usage

	type OrderPlaced struct{ ID string }

	type Mailer struct{}

	func (m *Mailer) OnEvent(ctx context.Context, e OrderPlaced) error {
	    return send(ctx, e.ID)
	}

	studio := eventstudio.New()
	mailer := &Mailer{}
	if _, err := studio.Add(ctx, eventstudio.Bind[OrderPlaced](mailer), 0, eventstudio.Strong); err != nil {
	    log.Fatal(err)
	}
	if err := studio.Broadcast(ctx, OrderPlaced{ID: "42"}); err != nil {
	    log.Fatal(err)
	}

Studio methods without a station name use a hidden station. Use AddTo and
BroadcastTo, or Studio.Station, to work with named stations.

# Priorities

Listeners with a lower priority are notified first. Listeners sharing a
priority are notified in registration order. The same listener can be
registered several times and is notified once per registration.

# Reference Strength

Strong listeners stay registered until removed. Weak and Soft listeners are
held through a weak pointer: once the application drops its last reference,
the listener stops being notified and its entry is purged on the next
broadcast of that type. Soft behaves like Weak.

Function listeners (BindFunc, ListenFunc) can only be registered Strong.

# Replay

An event that no listener receives is enqueued per station and per type.
Adding a listener for that type replays the queue in FIFO order before Add
returns, stopping at the first event that is still not received. Queues are
unbounded unless WithQueueCapacity is used, in which case events arriving at
a full queue are dropped with a warning.

# Interruption

A listener returning ErrStopBroadcast stops the notification of the
listeners after it. The broadcaster sees no error and the event is not
enqueued, even when no earlier listener received it. Any other listener error
stops the broadcast too and is returned as a *ListenerError:

	var lerr *eventstudio.ListenerError
	if errors.As(err, &lerr) {
	    log.Printf("listener %d on %s failed: %v", lerr.Entry, lerr.Station, lerr.Err)
	}

# Observability

Enable logging, metrics, and tracing:

	studio := eventstudio.New(
	    eventstudio.WithLogger(logger),
	    eventstudio.WithMetrics(true),
	    eventstudio.WithTracing(true))

OpenTelemetry metrics: eventstudio.broadcasts, eventstudio.queued, eventstudio.dropped, etc.
OpenTelemetry tracing: eventstudio.broadcast and eventstudio.replay spans.

# Thread Safety

Studio, Stations and Station are safe for concurrent use. Listeners are
notified outside of any lock, so they can add, remove and broadcast on the
station that is notifying them.
*/
package eventstudio
