package sim

import (
	"fmt"
	"maps"
	"math"
)

// Bundle is an ordered pair of orders served in one trip: both pickups, then
// both deliveries, primary first each time.
type Bundle struct {
	Primary, Secondary *Order
}

// Orders returns the bundle in service order.
func (b Bundle) Orders() []*Order {
	return []*Order{b.Primary, b.Secondary}
}

// Compatible reports whether candidate may be bundled behind primary: same
// Base, created no later than the consolidation window after primary, and
// combined quantity within CapacityMultiplier times the primary's Base.
func Compatible(primary, candidate *Order, cfg Config) bool {
	if candidate == primary || !primary.HasLoad() || candidate.Base == nil {
		return false
	}
	if *candidate.Base != *primary.Base {
		return false
	}
	if candidate.Timestamp.After(primary.Timestamp.Add(cfg.ConsolidationWindow)) {
		return false
	}
	combined := *primary.Quantity + candidate.QuantityOrZero()
	limit := cfg.CapacityMultiplier * *primary.Base
	return combined <= limit
}

// FindBestBundle searches pending orders for the partner and unit that serve
// primary at minimum cost. The waiting term is measured against state.Now.
// Partners whose origin the contention gate would block, once primary's own
// origin is counted as active, are skipped.
func FindBestBundle(primary *Order, state *DispatchState) (Assignment, bool) {
	if !primary.HasLoad() {
		return Assignment{}, false
	}
	cfg := state.Config

	active := state.Gate.ActiveConveyorStations(state.Fleet, state.GateAt)
	if cfg.IsConveyorFed(primary.Origin) {
		active = maps.Clone(active)
		active[primary.Origin] = true
	}

	best := Assignment{Cost: math.Inf(1)}
	found := false
	for _, candidate := range state.Pending {
		if !Compatible(primary, candidate, cfg) {
			continue
		}
		if blockedBy(active, candidate.Origin, state.Gate.Capacity(), cfg) {
			continue
		}
		b := Bundle{Primary: primary, Secondary: candidate}
		for _, u := range state.Fleet.Units() {
			trip, err := PlanTrip(u, b.Orders(), state.Distances)
			if err != nil {
				continue
			}
			cost := trip.TotalDistance() + cfg.waitCost(u.FreeAt, state.Now)
			if cost < best.Cost {
				best = Assignment{
					UnitID:  u.ID,
					Trip:    trip,
					Cost:    cost,
					Partner: candidate,
					Reason:  fmt.Sprintf("consolidated with %s (cost=%.2f)", candidate.ID, cost),
				}
				found = true
			}
		}
	}
	return best, found
}
