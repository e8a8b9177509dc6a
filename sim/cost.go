package sim

import "math"

// UnitCost is the outcome of costing one order (or bundle) on one unit.
// Err is non-nil when the trip could not be costed; Cost and Trip are then meaningless.
type UnitCost struct {
	UnitID int
	Cost   float64
	Trip   Trip
	Err    error
}

// Costable reports whether the evaluation succeeded.
func (c UnitCost) Costable() bool {
	return c.Err == nil
}

// EvaluateUnits costs a single order on every unit:
// unloaded + loaded distance + WaitCostWeight * seconds the unit would keep the order waiting.
// Every unit yields a result; failures are reported per unit rather than aborting.
func EvaluateUnits(order *Order, state *DispatchState) []UnitCost {
	units := state.Fleet.Units()
	costs := make([]UnitCost, len(units))
	for i, u := range units {
		trip, err := PlanTrip(u, []*Order{order}, state.Distances)
		if err != nil {
			costs[i] = UnitCost{UnitID: u.ID, Cost: math.Inf(1), Err: err}
			continue
		}
		costs[i] = UnitCost{
			UnitID: u.ID,
			Cost:   trip.TotalDistance() + state.Config.waitCost(u.FreeAt, order.Timestamp),
			Trip:   trip,
		}
	}
	return costs
}

// Cheapest returns the costable result with strictly lowest cost; ties keep
// the first one seen. ok is false when nothing is costable.
func Cheapest(costs []UnitCost) (best UnitCost, ok bool) {
	best.Cost = math.Inf(1)
	for _, c := range costs {
		if !c.Costable() {
			continue
		}
		if !ok || c.Cost < best.Cost {
			best, ok = c, true
		}
	}
	return best, ok
}
