// Derives per-unit and fleet-wide distance and idle-time statistics from the
// final fleet state.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// UnitMetrics summarizes one transport unit at the end of a run.
type UnitMetrics struct {
	UnitID             int     `yaml:"unit_id"`
	ServedOrders       int     `yaml:"served_orders"`
	TotalDistance      float64 `yaml:"total_distance"`
	UnloadedDistance   float64 `yaml:"unloaded_distance"`
	LoadedDistance     float64 `yaml:"loaded_distance"`
	StoppedIdleSeconds float64 `yaml:"stopped_idle_s"`
	MovingIdleSeconds  float64 `yaml:"moving_idle_s"`
}

// Metrics aggregates statistics about the run for final reporting.
type Metrics struct {
	FleetSize      int `yaml:"fleet_size"`
	ServedOrders   int `yaml:"served_orders"`
	UnservedOrders int `yaml:"unserved_orders"`
	Bundles        int `yaml:"bundles"`
	ForcedOrders   int `yaml:"forced_orders"`
	Miscosted      int `yaml:"miscosted_orders"`

	TotalDistance    float64 `yaml:"total_distance"`
	UnloadedDistance float64 `yaml:"unloaded_distance"`
	LoadedDistance   float64 `yaml:"loaded_distance"` // total - unloaded, never summed independently

	MeanTotalDistance    float64 `yaml:"mean_total_distance"`
	MeanUnloadedDistance float64 `yaml:"mean_unloaded_distance"`
	MeanLoadedDistance   float64 `yaml:"mean_loaded_distance"`

	StoppedIdleSeconds     float64 `yaml:"stopped_idle_s"`
	MovingIdleSeconds      float64 `yaml:"moving_idle_s"`
	TotalIdleSeconds       float64 `yaml:"total_idle_s"`
	MeanStoppedIdleSeconds float64 `yaml:"mean_stopped_idle_s"`
	MeanMovingIdleSeconds  float64 `yaml:"mean_moving_idle_s"`

	LoadedTravelSeconds float64 `yaml:"loaded_travel_s"`
	// MakespanSeconds spans the earliest served creation to the latest delivery.
	MakespanSeconds float64 `yaml:"makespan_s"`
	// FleetIdleSeconds is fleet time over the makespan not spent driving.
	FleetIdleSeconds float64 `yaml:"fleet_idle_s"`

	Units []UnitMetrics `yaml:"units"`
}

// Aggregate folds the final fleet state into a Metrics record. It does not
// modify the fleet.
func Aggregate(fleet *Fleet, unserved int) *Metrics {
	n := fleet.Len()
	m := &Metrics{FleetSize: n, UnservedOrders: unserved, Units: make([]UnitMetrics, n)}

	total := make([]float64, n)
	unloaded := make([]float64, n)
	stopped := make([]float64, n)
	moving := make([]float64, n)

	var first, last ServedOrder
	seenBundles := make(map[string]bool)
	for i, u := range fleet.Units() {
		total[i] = u.TotalDistance
		unloaded[i] = u.UnloadedDistance
		stopped[i] = u.StoppedIdle.Seconds()
		moving[i] = u.MovingIdle.Seconds()
		m.Units[i] = UnitMetrics{
			UnitID:             u.ID,
			ServedOrders:       len(u.History),
			TotalDistance:      u.TotalDistance,
			UnloadedDistance:   u.UnloadedDistance,
			LoadedDistance:     u.LoadedDistance(),
			StoppedIdleSeconds: stopped[i],
			MovingIdleSeconds:  moving[i],
		}

		for _, rec := range u.History {
			if m.ServedOrders == 0 || rec.Order.Timestamp.Before(first.Order.Timestamp) {
				first = rec
			}
			if m.ServedOrders == 0 || rec.Delivery.After(last.Delivery) {
				last = rec
			}
			m.ServedOrders++
			if rec.Forced {
				m.ForcedOrders++
			}
			if rec.Miscosted {
				m.Miscosted++
			}
			if len(rec.ConsolidatedWith) > 0 && !seenBundles[rec.Order.ID] {
				m.Bundles++
				seenBundles[rec.Order.ID] = true
				for _, id := range rec.ConsolidatedWith {
					seenBundles[id] = true
				}
			}
		}
	}

	m.TotalDistance = floats.Sum(total)
	m.UnloadedDistance = floats.Sum(unloaded)
	m.LoadedDistance = m.TotalDistance - m.UnloadedDistance
	m.MeanTotalDistance = stat.Mean(total, nil)
	m.MeanUnloadedDistance = stat.Mean(unloaded, nil)
	m.MeanLoadedDistance = m.MeanTotalDistance - m.MeanUnloadedDistance

	m.StoppedIdleSeconds = floats.Sum(stopped)
	m.MovingIdleSeconds = floats.Sum(moving)
	m.TotalIdleSeconds = m.StoppedIdleSeconds + m.MovingIdleSeconds
	m.MeanStoppedIdleSeconds = stat.Mean(stopped, nil)
	m.MeanMovingIdleSeconds = stat.Mean(moving, nil)

	m.LoadedTravelSeconds = fleet.cfg.TravelTime(m.LoadedDistance).Seconds()
	if m.ServedOrders > 0 {
		m.MakespanSeconds = last.Delivery.Sub(first.Order.Timestamp).Seconds()
		driving := fleet.cfg.TravelTime(m.TotalDistance).Seconds()
		m.FleetIdleSeconds = float64(n)*m.MakespanSeconds - driving
	}
	return m
}

// Metrics aggregates the simulator's current fleet state.
func (sim *Simulator) Metrics() *Metrics {
	return Aggregate(sim.Fleet, sim.WaitQ.Len())
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Dispatch Metrics ===")
	fmt.Printf("Transport units      : %d\n", m.FleetSize)
	fmt.Printf("Served orders        : %d\n", m.ServedOrders)
	fmt.Printf("Unserved orders      : %d\n", m.UnservedOrders)
	fmt.Printf("Bundles              : %d\n", m.Bundles)
	fmt.Printf("Forced assignments   : %d\n", m.ForcedOrders)
	if m.Miscosted > 0 {
		fmt.Printf("Miscosted orders     : %d\n", m.Miscosted)
	}
	fmt.Printf("Total distance       : %.2f\n", m.TotalDistance)
	fmt.Printf("Unloaded distance    : %.2f (%.2f%%)\n", m.UnloadedDistance, percent(m.UnloadedDistance, m.TotalDistance))
	fmt.Printf("Loaded distance      : %.2f\n", m.LoadedDistance)
	fmt.Printf("Idle time            : %s\n", seconds(m.TotalIdleSeconds))
	fmt.Printf("  - Stopped          : %s (mean %s per unit)\n", seconds(m.StoppedIdleSeconds), seconds(m.MeanStoppedIdleSeconds))
	fmt.Printf("  - Moving unloaded  : %s (mean %s per unit)\n", seconds(m.MovingIdleSeconds), seconds(m.MeanMovingIdleSeconds))
	fmt.Printf("Makespan             : %s\n", seconds(m.MakespanSeconds))
}
