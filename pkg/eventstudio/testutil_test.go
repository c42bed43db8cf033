package eventstudio

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/observability"
)

// Test event types used across tests

// Ping is the event most tests broadcast.
type Ping struct {
	Seq int
}

// Pong is a second event type, to check types do not interfere.
type Pong struct {
	Msg string
}

var (
	pingType = reflect.TypeFor[Ping]()
	pongType = reflect.TypeFor[Pong]()
)

// recorder collects listener names in notification order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// namedListener records its name and returns err.
type namedListener struct {
	name string
	rec  *recorder
	err  error
}

func (l *namedListener) OnEvent(_ context.Context, _ Ping) error {
	l.rec.record(l.name)
	return l.err
}

// countingListener counts notifications. It holds pointers so that it is
// never placed in the tiny allocator, which would delay its reclamation.
type countingListener struct {
	name  string
	count *atomic.Int32
	seen  []int
	mu    sync.Mutex
}

func newCountingListener(name string) *countingListener {
	return &countingListener{name: name, count: new(atomic.Int32)}
}

func (l *countingListener) OnEvent(_ context.Context, e Ping) error {
	l.mu.Lock()
	l.seen = append(l.seen, e.Seq)
	l.mu.Unlock()
	l.count.Add(1)
	return nil
}

func (l *countingListener) sequences() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.seen...)
}

// quietLogger discards everything.
func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestStation returns station "s" of a fresh directory.
func newTestStation(t *testing.T, opts ...Option) *Station {
	t.Helper()
	d := NewStations(append([]Option{WithLogger(quietLogger())}, opts...)...)
	st, err := d.Station("s")
	require.NoError(t, err)
	return st
}

// mustAdd registers b for its inferred type and fails the test on error.
func mustAdd(t *testing.T, st *Station, b Binding, priority int, strength ReferenceStrength) EntryID {
	t.Helper()
	id, err := st.AddInferred(context.Background(), b, priority, strength)
	require.NoError(t, err)
	return id
}

// broadcastN broadcasts Ping events with sequences 0..n-1.
func broadcastN(t *testing.T, st *Station, n int) {
	t.Helper()
	for i := range n {
		require.NoError(t, st.Broadcast(context.Background(), Ping{Seq: i}))
	}
}

// countingMetrics is a MetricsRecorder that counts calls per metric.
type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

var _ observability.MetricsRecorder = (*countingMetrics)(nil)

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counts: make(map[string]int)}
}

func (m *countingMetrics) inc(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
}

func (m *countingMetrics) get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

func (m *countingMetrics) RecordBroadcast(_ context.Context, _, _ string, delivered bool, _ time.Duration) {
	m.inc("broadcasts")
	if delivered {
		m.inc("broadcasts.delivered")
	}
}

func (m *countingMetrics) RecordDelivery(context.Context, string, string)    { m.inc("deliveries") }
func (m *countingMetrics) RecordQueued(context.Context, string, string)      { m.inc("queued") }
func (m *countingMetrics) RecordDropped(context.Context, string, string)     { m.inc("dropped") }
func (m *countingMetrics) RecordReplayed(context.Context, string, string)    { m.inc("replayed") }
func (m *countingMetrics) RecordInterrupted(context.Context, string, string) { m.inc("interrupted") }
func (m *countingMetrics) RecordReclaimed(context.Context, string, string)   { m.inc("reclaimed") }

// withMetricsRecorder injects a recorder directly.
func withMetricsRecorder(r observability.MetricsRecorder) Option {
	return func(c *config) {
		c.metrics = r
	}
}

var (
	observabilityNoopMetrics = observability.NoopMetrics{}
	observabilityNoopSpans   = observability.NoopSpanManager{}
)
