package sim

import (
	"fmt"
	"time"
)

// TransportUnit is the mutable state of one fleet member.
// A unit that has never been assigned has an empty Position and a zero FreeAt.
type TransportUnit struct {
	ID       int
	Position string    // station of the last delivery ("" until first assignment)
	FreeAt   time.Time // instant the unit completes its current trip

	TotalDistance    float64
	UnloadedDistance float64
	StoppedIdle      time.Duration // time parked between trips
	MovingIdle       time.Duration // time travelling without load

	History []ServedOrder
}

// Assigned reports whether the unit has served at least one trip.
func (u *TransportUnit) Assigned() bool {
	return !u.FreeAt.IsZero()
}

// PositionOr returns the unit position, or fallback for a never-assigned unit.
func (u *TransportUnit) PositionOr(fallback string) string {
	if u.Position == "" {
		return fallback
	}
	return u.Position
}

// LoadedDistance is derived from the totals so that the decomposition is exact.
func (u *TransportUnit) LoadedDistance() float64 {
	return u.TotalDistance - u.UnloadedDistance
}

// Fleet is the registry of transport units. Commit is its only mutator and is
// called exclusively by the Simulator.
type Fleet struct {
	units []*TransportUnit
	cfg   Config
}

// NewFleet creates n never-assigned units with ids 0..n-1.
func NewFleet(n int, cfg Config) *Fleet {
	if n <= 0 {
		panic(fmt.Sprintf("NewFleet: fleet size must be positive, got %d", n))
	}
	units := make([]*TransportUnit, n)
	for i := range units {
		units[i] = &TransportUnit{ID: i}
	}
	return &Fleet{units: units, cfg: cfg}
}

// Units returns all units in id order. Callers must not mutate them.
func (f *Fleet) Units() []*TransportUnit {
	return f.units
}

// Unit returns the unit with the given id.
func (f *Fleet) Unit(id int) *TransportUnit {
	return f.units[id]
}

// Len returns the fleet size.
func (f *Fleet) Len() int {
	return len(f.units)
}

// EarliestFree returns the unit that becomes free first. Never-assigned units
// count as free since forever; ties go to the lowest id.
func (f *Fleet) EarliestFree() *TransportUnit {
	best := f.units[0]
	for _, u := range f.units[1:] {
		if !best.Assigned() {
			break
		}
		if !u.Assigned() || u.FreeAt.Before(best.FreeAt) {
			best = u
		}
	}
	return best
}

// Leg is one directed hop of a trip.
type Leg struct {
	From, To string
	Distance float64
}

// Trip is the costed leg sequence a unit drives to serve one or more orders:
// an unloaded leg to the first pickup, then every pickup, then every delivery
// in order.
type Trip struct {
	Orders    []*Order
	Legs      []Leg
	Miscosted bool
}

// UnloadedDistance is the distance of the first leg.
func (t Trip) UnloadedDistance() float64 {
	return t.Legs[0].Distance
}

// LoadedDistance is the distance of every leg after the first.
func (t Trip) LoadedDistance() float64 {
	var d float64
	for _, l := range t.Legs[1:] {
		d += l.Distance
	}
	return d
}

// TotalDistance is the sum over all legs.
func (t Trip) TotalDistance() float64 {
	return t.UnloadedDistance() + t.LoadedDistance()
}

func tripStops(start string, orders []*Order) [][2]string {
	stops := make([][2]string, 0, 2*len(orders))
	pos := start
	for _, o := range orders {
		stops = append(stops, [2]string{pos, o.Origin})
		pos = o.Origin
	}
	for _, o := range orders {
		stops = append(stops, [2]string{pos, o.Destination})
		pos = o.Destination
	}
	return stops
}

// PlanTrip costs the trip unit u would drive to serve orders.
// Returns an error wrapping ErrUncostableRoute if any leg is undefined.
func PlanTrip(u *TransportUnit, orders []*Order, dp DistanceProvider) (Trip, error) {
	if len(orders) == 0 {
		panic("PlanTrip: orders must not be empty")
	}
	stops := tripStops(u.PositionOr(orders[0].Origin), orders)
	legs := make([]Leg, len(stops))
	for i, s := range stops {
		d, err := dp.Distance(s[0], s[1])
		if err != nil {
			return Trip{}, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		legs[i] = Leg{From: s[0], To: s[1], Distance: d}
	}
	return Trip{Orders: orders, Legs: legs}, nil
}

// planForcedTrip is PlanTrip for the forced drain: undefined legs cost zero
// and mark the trip as miscosted instead of failing.
func planForcedTrip(u *TransportUnit, orders []*Order, dp DistanceProvider) Trip {
	stops := tripStops(u.PositionOr(orders[0].Origin), orders)
	trip := Trip{Orders: orders, Legs: make([]Leg, len(stops))}
	for i, s := range stops {
		d, err := dp.Distance(s[0], s[1])
		if err != nil {
			trip.Miscosted = true
			d = 0
		}
		trip.Legs[i] = Leg{From: s[0], To: s[1], Distance: d}
	}
	return trip
}

func latestCreation(orders []*Order) time.Time {
	latest := orders[0].Timestamp
	for _, o := range orders[1:] {
		if o.Timestamp.After(latest) {
			latest = o.Timestamp
		}
	}
	return latest
}

// Commit applies a trip decided at now to a unit and returns the records
// appended to its history.
//
// The trip is ready at the latest of now and the creation instants of its
// orders, so a trip admitted late never starts in the past. A never-assigned
// unit departs when the trip is ready. Otherwise the unit departs at
// max(FreeAt, ready) plus the unloaded travel time, and any gap since FreeAt
// is stopped idle time. The unloaded travel time always counts as moving idle time.
func (f *Fleet) Commit(unitID int, trip Trip, now time.Time, forced bool) []ServedOrder {
	u := f.units[unitID]
	ready := latestCreation(trip.Orders)
	if now.After(ready) {
		ready = now
	}
	unloadedTravel := f.cfg.TravelTime(trip.UnloadedDistance())
	loadedTravel := f.cfg.TravelTime(trip.LoadedDistance())

	departure := ready
	if u.Assigned() {
		if u.FreeAt.After(ready) {
			departure = u.FreeAt
		}
		departure = departure.Add(unloadedTravel)
		if u.FreeAt.Before(departure) {
			u.StoppedIdle += departure.Sub(u.FreeAt)
		}
	}
	u.MovingIdle += unloadedTravel

	delivery := departure.Add(unloadedTravel).Add(loadedTravel)

	records := make([]ServedOrder, len(trip.Orders))
	pickup := departure.Add(unloadedTravel)
	for i, o := range trip.Orders {
		if i > 0 {
			pickup = pickup.Add(f.cfg.TravelTime(trip.Legs[i].Distance))
		}
		var others []string
		for _, other := range trip.Orders {
			if other != o {
				others = append(others, other.ID)
			}
		}
		records[i] = ServedOrder{
			Order:            o,
			UnitID:           u.ID,
			Departure:        departure,
			Pickup:           pickup,
			Delivery:         delivery,
			UnloadedDistance: trip.UnloadedDistance(),
			LoadedDistance:   trip.LoadedDistance(),
			TotalDistance:    trip.TotalDistance(),
			UnloadedTravel:   unloadedTravel,
			LoadedTravel:     loadedTravel,
			ConsolidatedWith: others,
			Forced:           forced,
			Miscosted:        trip.Miscosted,
		}
	}

	u.Position = trip.Legs[len(trip.Legs)-1].To
	u.FreeAt = delivery
	u.TotalDistance += trip.TotalDistance()
	u.UnloadedDistance += trip.UnloadedDistance()
	u.History = append(u.History, records...)
	return records
}
