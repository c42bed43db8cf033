package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordBroadcast does nothing.
func (NoopMetrics) RecordBroadcast(_ context.Context, _, _ string, _ bool, _ time.Duration) {}

// RecordDelivery does nothing.
func (NoopMetrics) RecordDelivery(_ context.Context, _, _ string) {}

// RecordQueued does nothing.
func (NoopMetrics) RecordQueued(_ context.Context, _, _ string) {}

// RecordDropped does nothing.
func (NoopMetrics) RecordDropped(_ context.Context, _, _ string) {}

// RecordReplayed does nothing.
func (NoopMetrics) RecordReplayed(_ context.Context, _, _ string) {}

// RecordInterrupted does nothing.
func (NoopMetrics) RecordInterrupted(_ context.Context, _, _ string) {}

// RecordReclaimed does nothing.
func (NoopMetrics) RecordReclaimed(_ context.Context, _, _ string) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartBroadcastSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartBroadcastSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartReplaySpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartReplaySpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
