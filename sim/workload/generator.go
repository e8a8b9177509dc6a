package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// GenerateOrders creates an order stream from a GeneratorSpec.
// Deterministic given the same spec (including its seed).
// Returns orders sorted by Timestamp with sequential IDs.
func GenerateOrders(spec *GeneratorSpec) ([]*sim.Order, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))

	var total float64
	for _, f := range spec.Flows {
		total += f.RateFraction
	}

	start := spec.Start.Truncate(time.Second)
	end := start.Add(spec.Horizon.Duration)
	var all []*sim.Order
	for i := range spec.Flows {
		flow := &spec.Flows[i]
		flowRNG := rng.ForSubsystem(sim.SubsystemFlow(flow.ID))
		sampler := NewArrivalSampler(flow.Arrival, spec.OrdersPerHour*flow.RateFraction/total)

		current := start
		for {
			current = current.Add(sampler.SampleIAT(flowRNG))
			if !current.Before(end) {
				break
			}
			origin, destination := pickRoute(flow, flowRNG)
			o := sim.NewOrder("", current, flow.Material, origin, destination)
			if flow.Base != nil {
				o = o.WithLoad(*flow.Base, sampleQuantity(flow, flowRNG))
			}
			all = append(all, o)
		}
	}

	// Stable sort keeps flow order for equal timestamps
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	if spec.MaxOrders > 0 && len(all) > spec.MaxOrders {
		all = all[:spec.MaxOrders]
	}
	for i, o := range all {
		o.ID = fmt.Sprintf("G%06d", i+1)
	}
	return all, nil
}

// pickRoute draws an origin and a destination other than the origin. When the
// origin is the only destination listed, the order stays at that station.
func pickRoute(flow *FlowSpec, rng *rand.Rand) (string, string) {
	origin := flow.Origins[rng.Intn(len(flow.Origins))]
	candidates := make([]string, 0, len(flow.Destinations))
	for _, d := range flow.Destinations {
		if d != origin {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return origin, origin
	}
	return origin, candidates[rng.Intn(len(candidates))]
}

func sampleQuantity(flow *FlowSpec, rng *rand.Rand) float64 {
	if flow.Quantity == nil {
		return *flow.Base
	}
	q := flow.Quantity.Min + rng.Float64()*(flow.Quantity.Max-flow.Quantity.Min)
	return math.Round(q*100) / 100
}
