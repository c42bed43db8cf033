// Package audit records the events inspected by station supervisors.
//
// It is an inspection log: records are never redelivered to listeners.
package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/config"
)

// Store persists audit records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a record. Sequence is assigned by the store.
	Append(rec Record) error

	// List returns the latest limit records of station, oldest first.
	// An empty station lists every station; limit <= 0 lists everything.
	List(station string, limit int) ([]Record, error)

	// Count returns the number of records of station, or of all stations
	// when station is empty.
	Count(station string) (int, error)

	// Purge removes the records of station, or every record when station
	// is empty, and returns how many were removed.
	Purge(station string) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one event seen by a supervisor.
type Record struct {
	// Sequence orders records within a store.
	Sequence int64
	// ID uniquely identifies the record.
	ID string
	// Station is the station the event was broadcast to.
	Station string
	// EventType is the Go type of the event.
	EventType string
	// Payload is the JSON encoding of the event.
	Payload []byte
	// InspectedAt is when the supervisor saw the event, in UTC.
	InspectedAt time.Time
}

// Sentinel errors for audit operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("audit store closed")

	// ErrUnsupportedDriver indicates an audit driver without a Store.
	ErrUnsupportedDriver = errors.New("unsupported audit driver")
)

// Open creates the store selected by settings.
func Open(settings config.AuditSettings) (Store, error) {
	switch settings.Driver {
	case config.AuditMemory:
		return NewMemoryStore(), nil
	case config.AuditSQLite:
		return NewSQLiteStore(settings.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, settings.Driver)
	}
}
