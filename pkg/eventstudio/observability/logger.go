// Package observability provides structured logging, metrics, and tracing
// for eventstudio stations.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every logging helper accepts a nil logger and does nothing in that case.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds station context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "orders")
//	enriched.Info("doing work") // includes station
func EnrichLogger(logger *slog.Logger, station string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("station", station))
}

// LogStationCreated logs the lazy creation of a station.
func LogStationCreated(logger *slog.Logger, station string) {
	if logger == nil {
		return
	}
	logger.Debug("station created",
		slog.String("station", station),
	)
}

// LogStationCleared logs the removal of a station from the directory.
func LogStationCleared(logger *slog.Logger, station string, existed bool) {
	if logger == nil {
		return
	}
	logger.Debug("station cleared",
		slog.String("station", station),
		slog.Bool("existed", existed),
	)
}

// LogBroadcast logs the start of a broadcast.
func LogBroadcast(logger *slog.Logger, eventType string, listeners int) {
	if logger == nil {
		return
	}
	logger.Debug("broadcasting event",
		slog.String("event_type", eventType),
		slog.Int("listeners", listeners),
	)
}

// LogListenerAdded logs a listener registration.
func LogListenerAdded(logger *slog.Logger, eventType string, priority int, strength string) {
	if logger == nil {
		return
	}
	logger.Debug("listener added",
		slog.String("event_type", eventType),
		slog.Int("priority", priority),
		slog.String("strength", strength),
	)
}

// LogListenersAdded logs a batch registration coming from a listener source.
func LogListenersAdded(logger *slog.Logger, owner string, count int) {
	if logger == nil {
		return
	}
	logger.Debug("listeners added",
		slog.String("owner", owner),
		slog.Int("count", count),
	)
}

// LogListenerRemoved logs a listener removal attempt.
func LogListenerRemoved(logger *slog.Logger, eventType string, found bool) {
	if logger == nil {
		return
	}
	logger.Debug("listener removed",
		slog.String("event_type", eventType),
		slog.Bool("found", found),
	)
}

// LogListenerReclaimed logs the lazy cleanup of a listener whose reference died.
func LogListenerReclaimed(logger *slog.Logger, eventType string) {
	if logger == nil {
		return
	}
	logger.Debug("removing reclaimed listener",
		slog.String("event_type", eventType),
	)
}

// LogInterrupted logs a broadcast that was stopped before reaching every listener.
func LogInterrupted(logger *slog.Logger, eventType string, by string) {
	if logger == nil {
		return
	}
	logger.Info("broadcast interrupted",
		slog.String("event_type", eventType),
		slog.String("interrupted_by", by),
	)
}

// LogEnqueued logs an event held for future listeners.
func LogEnqueued(logger *slog.Logger, eventType string, pending int) {
	if logger == nil {
		return
	}
	logger.Debug("no one is listening, event enqueued",
		slog.String("event_type", eventType),
		slog.Int("pending", pending),
	)
}

// LogQueueOverflow logs an event dropped because its replay queue is full (non-fatal).
func LogQueueOverflow(logger *slog.Logger, eventType string, capacity int) {
	if logger == nil {
		return
	}
	logger.Warn("replay queue full, unlistened event lost",
		slog.String("event_type", eventType),
		slog.Int("capacity", capacity),
	)
}

// LogReplay logs the redelivery of a queued event.
func LogReplay(logger *slog.Logger, eventType string, delivered bool) {
	if logger == nil {
		return
	}
	logger.Debug("replayed enqueued event",
		slog.String("event_type", eventType),
		slog.Bool("delivered", delivered),
	)
}

// LogSupervisorError logs a supervisor failure. The broadcast continues.
func LogSupervisorError(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("supervisor inspection failed",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogListenerError logs a listener fault before it is returned to the broadcaster.
func LogListenerError(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
