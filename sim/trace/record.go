// Package trace provides decision-trace recording for dispatch policy analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "time"

// AssignmentRecord captures a single committed dispatch decision.
type AssignmentRecord struct {
	OrderID         string
	Instant         time.Time // decision instant (gate instant for retries and drains)
	UnitID          int
	Cost            float64
	Reason          string
	Partner         string // ID of the bundled order; empty for single-order trips
	Retried         bool   // committed from the waiting queue during the main pass
	Forced          bool   // committed by the end-of-stream drain, gate ignored
	Miscosted       bool
	ActiveConveyors int // distinct active conveyor-fed stations right after the commit
}

// DeferralRecord captures an order parked in the waiting queue.
type DeferralRecord struct {
	OrderID        string
	Instant        time.Time
	Reason         string   // "contention" or "uncostable"
	ActiveStations []string // active conveyor-fed stations when the gate was evaluated
}
