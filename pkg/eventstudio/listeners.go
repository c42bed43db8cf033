package eventstudio

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
)

// EntryID identifies one listener registration within a station.
// IDs grow monotonically and break ties between equal priorities.
type EntryID uint64

// ListenerInfo describes a registered listener.
type ListenerInfo struct {
	ID       EntryID
	Priority int
	Strength ReferenceStrength
	// Alive is false when a Weak or Soft listener was reclaimed but not yet purged.
	Alive bool
}

type entry struct {
	id       EntryID
	priority int
	strength ReferenceStrength
	ref      handle
}

func compareEntries(a, b entry) int {
	if c := cmp.Compare(a.priority, b.priority); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// pendingEntry is a resolved registration waiting to be inserted.
type pendingEntry struct {
	eventType reflect.Type
	priority  int
	strength  ReferenceStrength
	ref       handle
}

// listeners holds the priority ordered entries of a station, per event type.
//
// Slices stored in byType are never mutated in place: every change publishes
// a new slice, so a snapshot stays valid while listeners are being notified.
// A key is deleted as soon as its slice would become empty.
type listeners struct {
	mu     sync.RWMutex
	nextID EntryID
	byType map[reflect.Type][]entry
}

func newListeners() *listeners {
	return &listeners{byType: make(map[reflect.Type][]entry)}
}

// add inserts a single entry and returns its id. Every insert replaces the
// slice for its type, so there is no read-only path to try first.
func (l *listeners) add(p pendingEntry) EntryID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insertLocked(p)
}

// addBatch inserts all entries in one critical section and returns the
// distinct event types touched, in first-seen order.
func (l *listeners) addBatch(batch []pendingEntry) []reflect.Type {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated := make([]reflect.Type, 0, len(batch))
	for _, p := range batch {
		l.insertLocked(p)
		if !slices.Contains(updated, p.eventType) {
			updated = append(updated, p.eventType)
		}
	}
	return updated
}

func (l *listeners) insertLocked(p pendingEntry) EntryID {
	l.nextID++
	e := entry{id: l.nextID, priority: p.priority, strength: p.strength, ref: p.ref}

	current := l.byType[p.eventType]
	i, _ := slices.BinarySearchFunc(current, e, compareEntries)
	next := make([]entry, 0, len(current)+1)
	next = append(next, current[:i]...)
	next = append(next, e)
	next = append(next, current[i:]...)
	l.byType[p.eventType] = next
	return e.id
}

// snapshot returns the ordered entries for eventType. The result must not be modified.
func (l *listeners) snapshot(eventType reflect.Type) []entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byType[eventType]
}

// remove deletes the first entry currently resolving to listener.
func (l *listeners) remove(eventType reflect.Type, listener any) bool {
	return l.removeFunc(eventType, func(e entry) bool {
		return e.ref.refersTo(listener)
	})
}

// removeEntry deletes the entry with the given id.
func (l *listeners) removeEntry(eventType reflect.Type, id EntryID) bool {
	return l.removeFunc(eventType, func(e entry) bool {
		return e.id == id
	})
}

func (l *listeners) removeFunc(eventType reflect.Type, match func(entry) bool) bool {
	// Fast path: nothing registered for the type
	l.mu.RLock()
	_, ok := l.byType[eventType]
	l.mu.RUnlock()
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.byType[eventType]
	i := slices.IndexFunc(current, match)
	if i < 0 {
		return false
	}
	if len(current) == 1 {
		delete(l.byType, eventType)
		return true
	}
	next := make([]entry, 0, len(current)-1)
	next = append(next, current[:i]...)
	next = append(next, current[i+1:]...)
	l.byType[eventType] = next
	return true
}

// info describes the entries registered for eventType.
func (l *listeners) info(eventType reflect.Type) []ListenerInfo {
	snapshot := l.snapshot(eventType)
	if len(snapshot) == 0 {
		return nil
	}
	infos := make([]ListenerInfo, 0, len(snapshot))
	for _, e := range snapshot {
		_, alive := e.ref.resolve()
		infos = append(infos, ListenerInfo{
			ID:       e.id,
			Priority: e.priority,
			Strength: e.strength,
			Alive:    alive,
		})
	}
	return infos
}

// types returns the number of event types with at least one entry.
func (l *listeners) types() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byType)
}
