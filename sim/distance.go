package sim

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUncostableRoute is matched (via errors.Is) by every lookup failure of a DistanceProvider.
var ErrUncostableRoute = errors.New("uncostable route")

// UncostableRouteError reports a station pair that has no distance defined.
type UncostableRouteError struct {
	From, To string
}

func (e *UncostableRouteError) Error() string {
	return fmt.Sprintf("no distance from %q to %q", e.From, e.To)
}

// Is makes errors.Is(err, ErrUncostableRoute) succeed.
func (e *UncostableRouteError) Is(target error) bool {
	return target == ErrUncostableRoute
}

// DistanceProvider returns the directed travel distance between two stations.
// Implementations must be pure: the same pair always yields the same answer.
type DistanceProvider interface {
	Distance(from, to string) (float64, error)
}

// Matrix is a DistanceProvider backed by a directed (possibly asymmetric) table.
type Matrix struct {
	rows map[string]map[string]float64
}

// NewMatrix creates an empty Matrix.
func NewMatrix() *Matrix {
	return &Matrix{rows: make(map[string]map[string]float64)}
}

// Set defines the distance from one station to another.
// Panics on negative distances: callers validate input tables before building a Matrix.
func (m *Matrix) Set(from, to string, d float64) {
	if d < 0 {
		panic(fmt.Sprintf("Matrix.Set: negative distance %v from %q to %q", d, from, to))
	}
	row, ok := m.rows[from]
	if !ok {
		row = make(map[string]float64)
		m.rows[from] = row
	}
	row[to] = d
	if _, ok := m.rows[to]; !ok {
		m.rows[to] = make(map[string]float64)
	}
}

// Distance implements DistanceProvider. A known station is at distance 0 from
// itself even when the diagonal was left blank.
func (m *Matrix) Distance(from, to string) (float64, error) {
	row, ok := m.rows[from]
	if ok {
		if d, ok := row[to]; ok {
			return d, nil
		}
		if from == to {
			return 0, nil
		}
	}
	return 0, &UncostableRouteError{From: from, To: to}
}

// Has reports whether the station appears on either axis.
func (m *Matrix) Has(station string) bool {
	_, ok := m.rows[station]
	return ok
}

// Stations returns the known station names in sorted order.
func (m *Matrix) Stations() []string {
	names := make([]string, 0, len(m.rows))
	for name := range m.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MissingPairs returns every station pair the fleet may drive while serving
// orders that dp cannot cost, in first-seen order without duplicates.
//
// Checked legs: each order's origin to destination; every referenced
// destination to every referenced origin, since a unit parked after any trip
// may be sent to any pickup; and, under the consolidation policy, the
// pickup-to-pickup, pickup-to-delivery and delivery-to-delivery legs of every
// compatible pair.
func MissingPairs(dp DistanceProvider, orders []*Order, cfg Config) []UncostableRouteError {
	seen := make(map[[2]string]bool)
	var missing []UncostableRouteError
	check := func(from, to string) {
		key := [2]string{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		if _, err := dp.Distance(from, to); err != nil {
			missing = append(missing, UncostableRouteError{From: from, To: to})
		}
	}

	var origins, destinations []string
	knownOrigin := make(map[string]bool)
	knownDestination := make(map[string]bool)
	for _, o := range orders {
		check(o.Origin, o.Destination)
		if !knownOrigin[o.Origin] {
			knownOrigin[o.Origin] = true
			origins = append(origins, o.Origin)
		}
		if !knownDestination[o.Destination] {
			knownDestination[o.Destination] = true
			destinations = append(destinations, o.Destination)
		}
	}
	for _, d := range destinations {
		for _, o := range origins {
			check(d, o)
		}
	}

	if cfg.Policy != "consolidation" {
		return missing
	}
	sorted := make([]*Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	for i, p := range sorted {
		for _, c := range sorted[i+1:] {
			if c.Timestamp.After(p.Timestamp.Add(cfg.ConsolidationWindow)) {
				break
			}
			if !Compatible(p, c, cfg) {
				continue
			}
			check(p.Origin, c.Origin)
			check(c.Origin, p.Destination)
			check(p.Destination, c.Destination)
		}
	}
	return missing
}
