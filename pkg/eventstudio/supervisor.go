package eventstudio

import "context"

// Supervisor inspects every event broadcast to a station before any listener
// is notified. Errors are logged and otherwise ignored, except ErrStopBroadcast
// which ends the broadcast.
type Supervisor interface {
	Inspect(ctx context.Context, event any) error
}

// SupervisorFunc adapts a function to the Supervisor interface.
type SupervisorFunc func(ctx context.Context, event any) error

// Inspect calls f(ctx, event).
func (f SupervisorFunc) Inspect(ctx context.Context, event any) error {
	return f(ctx, event)
}

type slacker struct{}

func (slacker) Inspect(context.Context, any) error { return nil }

// Slacker is the default supervisor. It lets everything through.
var Slacker Supervisor = slacker{}

// supervisorSlot lets a Supervisor interface value live behind an atomic.Pointer.
type supervisorSlot struct {
	Supervisor
}
