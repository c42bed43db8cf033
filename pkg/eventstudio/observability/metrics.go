package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records station metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordBroadcast records a completed broadcast and whether anyone received it.
	RecordBroadcast(ctx context.Context, station, eventType string, delivered bool, duration time.Duration)

	// RecordDelivery records one listener invocation that completed normally.
	RecordDelivery(ctx context.Context, station, eventType string)

	// RecordQueued records an event held in a replay queue.
	RecordQueued(ctx context.Context, station, eventType string)

	// RecordDropped records an event lost to a full replay queue.
	RecordDropped(ctx context.Context, station, eventType string)

	// RecordReplayed records a queued event taken out for redelivery.
	RecordReplayed(ctx context.Context, station, eventType string)

	// RecordInterrupted records a broadcast pass stopped by a listener or supervisor.
	RecordInterrupted(ctx context.Context, station, eventType string)

	// RecordReclaimed records a listener entry purged because its reference died.
	RecordReclaimed(ctx context.Context, station, eventType string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	broadcasts       metric.Int64Counter
	broadcastLatency metric.Float64Histogram
	deliveries       metric.Int64Counter
	queued           metric.Int64Counter
	dropped          metric.Int64Counter
	replayed         metric.Int64Counter
	interrupted      metric.Int64Counter
	reclaimed        metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventstudio")

	broadcasts, err := meter.Int64Counter("eventstudio.broadcasts",
		metric.WithDescription("Number of broadcast calls"),
	)
	if err != nil {
		return nil, err
	}

	broadcastLatency, err := meter.Float64Histogram("eventstudio.broadcast.latency_ms",
		metric.WithDescription("Broadcast latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("eventstudio.deliveries",
		metric.WithDescription("Number of listener invocations"),
	)
	if err != nil {
		return nil, err
	}

	queued, err := meter.Int64Counter("eventstudio.queued",
		metric.WithDescription("Number of events held for future listeners"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("eventstudio.dropped",
		metric.WithDescription("Number of events lost to full replay queues"),
	)
	if err != nil {
		return nil, err
	}

	replayed, err := meter.Int64Counter("eventstudio.replayed",
		metric.WithDescription("Number of queued events taken out for redelivery"),
	)
	if err != nil {
		return nil, err
	}

	interrupted, err := meter.Int64Counter("eventstudio.interrupted",
		metric.WithDescription("Number of interrupted broadcast passes"),
	)
	if err != nil {
		return nil, err
	}

	reclaimed, err := meter.Int64Counter("eventstudio.reclaimed",
		metric.WithDescription("Number of listener entries purged after their reference died"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		broadcasts:       broadcasts,
		broadcastLatency: broadcastLatency,
		deliveries:       deliveries,
		queued:           queued,
		dropped:          dropped,
		replayed:         replayed,
		interrupted:      interrupted,
		reclaimed:        reclaimed,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func eventAttrs(station, eventType string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("station", station),
		attribute.String("event_type", eventType),
	)
}

// RecordBroadcast records a broadcast.
func (m *otelMetrics) RecordBroadcast(ctx context.Context, station, eventType string, delivered bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("station", station),
		attribute.String("event_type", eventType),
		attribute.Bool("delivered", delivered),
	)
	m.broadcasts.Add(ctx, 1, attrs)
	m.broadcastLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordDelivery records a listener invocation.
func (m *otelMetrics) RecordDelivery(ctx context.Context, station, eventType string) {
	m.deliveries.Add(ctx, 1, eventAttrs(station, eventType))
}

// RecordQueued records an enqueued event.
func (m *otelMetrics) RecordQueued(ctx context.Context, station, eventType string) {
	m.queued.Add(ctx, 1, eventAttrs(station, eventType))
}

// RecordDropped records a dropped event.
func (m *otelMetrics) RecordDropped(ctx context.Context, station, eventType string) {
	m.dropped.Add(ctx, 1, eventAttrs(station, eventType))
}

// RecordReplayed records a replayed event.
func (m *otelMetrics) RecordReplayed(ctx context.Context, station, eventType string) {
	m.replayed.Add(ctx, 1, eventAttrs(station, eventType))
}

// RecordInterrupted records an interrupted pass.
func (m *otelMetrics) RecordInterrupted(ctx context.Context, station, eventType string) {
	m.interrupted.Add(ctx, 1, eventAttrs(station, eventType))
}

// RecordReclaimed records a purged listener entry.
func (m *otelMetrics) RecordReclaimed(ctx context.Context, station, eventType string) {
	m.reclaimed.Add(ctx, 1, eventAttrs(station, eventType))
}
