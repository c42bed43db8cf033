package audit

import (
	"slices"
	"sync"
)

// MemoryStore keeps audit records in memory.
// Records are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextSeq int64
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.nextSeq++
	rec.Sequence = m.nextSeq
	// Copy payload to avoid retaining caller's slice
	rec.Payload = slices.Clone(rec.Payload)
	m.records = append(m.records, rec)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(station string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Record
	for _, rec := range m.records {
		if station == "" || rec.Station == station {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(station string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	if station == "" {
		return len(m.records), nil
	}
	n := 0
	for _, rec := range m.records {
		if rec.Station == station {
			n++
		}
	}
	return n, nil
}

// Purge implements Store.
func (m *MemoryStore) Purge(station string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	before := len(m.records)
	if station == "" {
		m.records = nil
		return before, nil
	}
	m.records = slices.DeleteFunc(m.records, func(rec Record) bool {
		return rec.Station == station
	})
	return before - len(m.records), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
