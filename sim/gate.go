package sim

import (
	"sort"
	"time"
)

// ContentionGate caps how many distinct conveyor-fed stations are serviced concurrently.
// It holds no state of its own: every check reads the fleet afresh.
type ContentionGate struct {
	capacity int
	cfg      Config
}

// NewContentionGate creates a gate with the configured capacity and station marker.
func NewContentionGate(cfg Config) *ContentionGate {
	return &ContentionGate{capacity: cfg.GateCapacity, cfg: cfg}
}

// ActiveConveyorStations returns the conveyor-fed origins of trips still in
// progress at now, across every unit that is mid-trip.
func (g *ContentionGate) ActiveConveyorStations(fleet *Fleet, now time.Time) map[string]bool {
	active := make(map[string]bool)
	for _, u := range fleet.Units() {
		if !u.FreeAt.After(now) {
			continue
		}
		// History is ordered by delivery, so only a suffix can still be in flight.
		for i := len(u.History) - 1; i >= 0; i-- {
			rec := u.History[i]
			if !rec.Delivery.After(now) {
				break
			}
			if g.cfg.IsConveyorFed(rec.Order.Origin) {
				active[rec.Order.Origin] = true
			}
		}
	}
	return active
}

// IsBlocked reports whether an order from station must wait: the station is
// conveyor-fed, not already active, and the active set is at capacity.
func (g *ContentionGate) IsBlocked(station string, fleet *Fleet, now time.Time) bool {
	if !g.cfg.IsConveyorFed(station) {
		return false
	}
	return blockedBy(g.ActiveConveyorStations(fleet, now), station, g.capacity, g.cfg)
}

func blockedBy(active map[string]bool, station string, capacity int, cfg Config) bool {
	if !cfg.IsConveyorFed(station) || active[station] {
		return false
	}
	return len(active) >= capacity
}

// Capacity returns the maximum number of concurrently active conveyor stations.
func (g *ContentionGate) Capacity() int {
	return g.capacity
}

// sortedStations returns the keys of an active set in sorted order, for logs and traces.
func sortedStations(active map[string]bool) []string {
	out := make([]string, 0, len(active))
	for s := range active {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
