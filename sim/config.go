package sim

import (
	"fmt"
	"strings"
	"time"
)

// Defaults observed in the facility the engine was calibrated on.
const (
	DefaultConsolidationWindow = 15 * time.Minute
	DefaultGateCapacity        = 2
	DefaultSpeedDivisor        = 10.0 // distance units per second
	DefaultWaitCostWeight      = 0.1  // cost units per second of waiting
	DefaultCapacityMultiplier  = 3.0
	DefaultConveyorMarker      = "Esteira"
)

// Config groups every parameter of a simulation run.
type Config struct {
	FleetSize int    // number of transport units, fixed for the run (must be > 0)
	Policy    string // "fifo", "greedy" (default) or "consolidation"

	ConsolidationWindow time.Duration // max creation gap between bundled orders
	GateCapacity        int           // max distinct conveyor-fed stations serviced concurrently
	SpeedDivisor        float64       // distance / SpeedDivisor = travel seconds
	WaitCostWeight      float64       // cost per second a unit would keep the order waiting
	CapacityMultiplier  float64       // bundle quantity limit, in multiples of the primary's Base
	ConveyorMarker      string        // substring identifying conveyor-fed stations
}

// DefaultConfig returns a Config for a fleet of the given size with observed defaults.
func DefaultConfig(fleetSize int) Config {
	return Config{
		FleetSize:           fleetSize,
		Policy:              "greedy",
		ConsolidationWindow: DefaultConsolidationWindow,
		GateCapacity:        DefaultGateCapacity,
		SpeedDivisor:        DefaultSpeedDivisor,
		WaitCostWeight:      DefaultWaitCostWeight,
		CapacityMultiplier:  DefaultCapacityMultiplier,
		ConveyorMarker:      DefaultConveyorMarker,
	}
}

// Validate checks parameter ranges and the policy name.
func (c Config) Validate() error {
	if c.FleetSize <= 0 {
		return fmt.Errorf("fleet size must be positive, got %d", c.FleetSize)
	}
	if !IsValidDispatchPolicy(c.Policy) {
		return fmt.Errorf("unknown dispatch policy %q", c.Policy)
	}
	if c.ConsolidationWindow < 0 {
		return fmt.Errorf("consolidation window must be non-negative, got %s", c.ConsolidationWindow)
	}
	if c.GateCapacity <= 0 {
		return fmt.Errorf("gate capacity must be positive, got %d", c.GateCapacity)
	}
	if c.SpeedDivisor <= 0 {
		return fmt.Errorf("speed divisor must be positive, got %f", c.SpeedDivisor)
	}
	if c.WaitCostWeight < 0 {
		return fmt.Errorf("wait cost weight must be non-negative, got %f", c.WaitCostWeight)
	}
	if c.CapacityMultiplier < 0 {
		return fmt.Errorf("capacity multiplier must be non-negative, got %f", c.CapacityMultiplier)
	}
	if c.ConveyorMarker == "" {
		return fmt.Errorf("conveyor marker must not be empty")
	}
	return nil
}

// IsConveyorFed reports whether a station is subject to the contention rule.
func (c Config) IsConveyorFed(station string) bool {
	return strings.Contains(station, c.ConveyorMarker)
}

// TravelTime converts a distance into travel time.
func (c Config) TravelTime(distance float64) time.Duration {
	return time.Duration(distance / c.SpeedDivisor * float64(time.Second))
}

// waitCost is the penalty for a unit that frees up after the reference instant.
func (c Config) waitCost(freeAt, ref time.Time) float64 {
	if freeAt.IsZero() {
		return 0
	}
	wait := freeAt.Sub(ref).Seconds()
	if wait <= 0 {
		return 0
	}
	return wait * c.WaitCostWeight
}
