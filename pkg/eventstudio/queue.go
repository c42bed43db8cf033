package eventstudio

import (
	"reflect"
	"sync"
)

// replayQueue is a FIFO of events nobody listened to.
// A capacity of zero or less means unbounded.
type replayQueue struct {
	mu       sync.Mutex
	capacity int
	items    []any
}

// offer appends event unless the queue is full.
func (q *replayQueue) offer(event any) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, event)
	return true
}

// poll removes and returns the oldest event.
func (q *replayQueue) poll() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	event := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return event, true
}

func (q *replayQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// replayQueues maps event types to their replay queue.
type replayQueues struct {
	mu       sync.RWMutex
	capacity int
	byType   map[reflect.Type]*replayQueue
}

func newReplayQueues(capacity int) *replayQueues {
	return &replayQueues{
		capacity: capacity,
		byType:   make(map[reflect.Type]*replayQueue),
	}
}

// get returns the queue for eventType, or nil if none was ever needed.
func (r *replayQueues) get(eventType reflect.Type) *replayQueue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[eventType]
}

// getOrCreate returns the queue for eventType, creating it on first use.
func (r *replayQueues) getOrCreate(eventType reflect.Type) *replayQueue {
	// Fast path: check if already exists
	r.mu.RLock()
	q, ok := r.byType[eventType]
	r.mu.RUnlock()
	if ok {
		return q
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if q, ok := r.byType[eventType]; ok {
		return q
	}
	q = &replayQueue{capacity: r.capacity}
	r.byType[eventType] = q
	return q
}
