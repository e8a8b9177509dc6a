package sim

import (
	"fmt"
	"time"
)

// DispatchState is the read-only view a DispatchPolicy decides on.
type DispatchState struct {
	Fleet     *Fleet
	Distances DistanceProvider
	Gate      *ContentionGate
	Config    Config

	// Now is the instant decisions are costed at. It equals the order timestamp
	// in the main pass and is held at the entry's timestamp on retries.
	Now time.Time
	// GateAt is the instant the contention gate is evaluated at (the stream clock).
	GateAt time.Time

	// Pending holds stream orders not yet processed, in timestamp order.
	// Policies must not modify it.
	Pending []*Order
}

// Assignment is a policy's choice: which unit drives which trip.
type Assignment struct {
	UnitID  int
	Trip    Trip
	Cost    float64
	Partner *Order // second order of a consolidation bundle, nil for single-order trips
	Reason  string
}

// DispatchPolicy picks a unit for an order that has already passed the contention gate.
// ok is false when no unit can serve the order; the caller then defers it.
type DispatchPolicy interface {
	Select(order *Order, state *DispatchState) (a Assignment, ok bool)
}

// FIFO assigns every order to the unit that becomes free first, without costing alternatives.
type FIFO struct{}

// Select implements DispatchPolicy for FIFO.
func (p *FIFO) Select(order *Order, state *DispatchState) (Assignment, bool) {
	u := state.Fleet.EarliestFree()
	trip, err := PlanTrip(u, []*Order{order}, state.Distances)
	if err != nil {
		return Assignment{}, false
	}
	return Assignment{
		UnitID: u.ID,
		Trip:   trip,
		Cost:   trip.TotalDistance(),
		Reason: "fifo (earliest-free)",
	}, true
}

// Greedy assigns every order to its cheapest unit.
// Cost = unloaded + loaded distance + WaitCostWeight * max(0, FreeAt - order time) seconds.
// Ties are broken by lowest unit id.
type Greedy struct{}

// Select implements DispatchPolicy for Greedy.
func (p *Greedy) Select(order *Order, state *DispatchState) (Assignment, bool) {
	best, ok := Cheapest(EvaluateUnits(order, state))
	if !ok {
		return Assignment{}, false
	}
	return Assignment{
		UnitID: best.UnitID,
		Trip:   best.Trip,
		Cost:   best.Cost,
		Reason: fmt.Sprintf("greedy (cost=%.2f)", best.Cost),
	}, true
}

// Consolidating is Greedy plus pairwise bundling: when a compatible pending
// order can ride along for strictly less than the best single-order cost,
// both are served in one trip.
type Consolidating struct {
	single Greedy
}

// Select implements DispatchPolicy for Consolidating.
func (p *Consolidating) Select(order *Order, state *DispatchState) (Assignment, bool) {
	single, singleOK := p.single.Select(order, state)
	bundle, bundleOK := FindBestBundle(order, state)
	if bundleOK && (!singleOK || bundle.Cost < single.Cost) {
		return bundle, true
	}
	return single, singleOK
}

// NewDispatchPolicy creates a dispatch policy by name.
// Valid names are defined in ValidDispatchPolicies (bundle.go).
// An empty string defaults to greedy.
// Panics on unrecognized names.
func NewDispatchPolicy(name string) DispatchPolicy {
	if !IsValidDispatchPolicy(name) {
		panic(fmt.Sprintf("unknown dispatch policy %q", name))
	}
	switch name {
	case "fifo":
		return &FIFO{}
	case "", "greedy":
		return &Greedy{}
	case "consolidation":
		return &Consolidating{}
	default:
		panic(fmt.Sprintf("unhandled dispatch policy %q", name))
	}
}
