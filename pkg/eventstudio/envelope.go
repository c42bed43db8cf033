package eventstudio

// envelope carries one event through a dispatch pass.
type envelope struct {
	event     any
	delivered bool
}

func newEnvelope(event any) *envelope {
	return &envelope{event: event}
}

func (e *envelope) markDelivered() {
	e.delivered = true
}
