// Package sim provides the dispatch simulation engine for a fleet of transport units
// serving pickup/delivery orders inside a facility.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - order.go: Order (immutable input) and ServedOrder (result record)
//   - fleet.go: TransportUnit state and the Fleet registry with its single mutator, Commit
//   - simulator.go: the dispatch loop, the waiting-queue retry pass, and the forced drain
//
// # Architecture
//
// The engine is one Simulator parameterized by a DispatchPolicy. Policies are
// interchangeable strategies selected by name (see ValidDispatchPolicies in bundle.go):
//   - fifo: next unit to become free, no costing
//   - greedy: cheapest unit by unloaded + loaded distance plus a waiting penalty
//   - consolidation: greedy, plus pairwise bundling of compatible pending orders
//
// Every policy decision is guarded by the ContentionGate, which caps how many
// conveyor-fed stations may be serviced concurrently. Orders the gate blocks, or
// that no unit can cost, wait in the WaitQueue and are retried after each commit.
// Orders still waiting when the stream is exhausted are force-assigned.
//
// Sub-packages:
//   - sim/workload/: order table and distance matrix ingestion, synthetic order generation
//   - sim/report/: result table, metrics record, and Prometheus textfile output
//   - sim/trace/: decision trace recording
//
// # Key Interfaces
//
//   - DistanceProvider: directed station-to-station distance lookup
//   - DispatchPolicy: choose a unit (and optionally a partner order) for an order
package sim
