package eventstudio

import (
	"slices"
	"strings"
	"sync"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/observability"
)

// Stations is a directory of stations indexed by name. Stations are created
// on first use and live until cleared. It is safe for concurrent use.
type Stations struct {
	mu       sync.RWMutex
	stations map[string]*Station
	cfg      *config
}

// NewStations creates an empty directory. Options apply to every station it creates.
func NewStations(opts ...Option) *Stations {
	return newStations(newConfig(opts))
}

func newStations(cfg *config) *Stations {
	return &Stations{
		stations: make(map[string]*Station),
		cfg:      cfg,
	}
}

// Station returns the station with the given name, creating it if needed.
// Concurrent first calls for the same name all get the same instance.
func (d *Stations) Station(name string) (*Station, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankStationName
	}

	// Fast path: check if already exists
	d.mu.RLock()
	s, ok := d.stations[name]
	d.mu.RUnlock()
	if ok {
		return s, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := d.stations[name]; ok {
		return s, nil
	}
	s = newStation(name, d.cfg)
	d.stations[name] = s
	observability.LogStationCreated(d.cfg.logger, name)
	return s, nil
}

// Clear drops the named station with its listeners, enqueued events and
// supervisor. The next lookup of that name creates a fresh station.
// It reports whether the station existed; blank names never do.
func (d *Stations) Clear(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	d.mu.Lock()
	_, existed := d.stations[name]
	delete(d.stations, name)
	d.mu.Unlock()

	observability.LogStationCleared(d.cfg.logger, name, existed)
	return existed
}

// All returns a snapshot of the known stations, sorted by name.
func (d *Stations) All() []*Station {
	d.mu.RLock()
	all := make([]*Station, 0, len(d.stations))
	for _, s := range d.stations {
		all = append(all, s)
	}
	d.mu.RUnlock()

	slices.SortFunc(all, func(a, b *Station) int {
		return strings.Compare(a.name, b.name)
	})
	return all
}

// Names returns the names of the known stations, sorted.
func (d *Stations) Names() []string {
	d.mu.RLock()
	names := make([]string, 0, len(d.stations))
	for name := range d.stations {
		names = append(names, name)
	}
	d.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of known stations.
func (d *Stations) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.stations)
}
