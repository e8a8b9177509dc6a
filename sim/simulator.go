// sim/simulator.go
package sim

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

// Simulator is the core object that owns the simulation clock, the fleet,
// the waiting queue, and the dispatch loop. Nothing else mutates them.
type Simulator struct {
	Config Config
	// Clock is the stream clock: the timestamp of the latest order pulled from
	// the stream, advanced further by the forced drain. It never moves backwards.
	Clock time.Time
	Fleet *Fleet
	// WaitQ holds orders deferred by the gate or because no unit could cost them.
	WaitQ     *WaitQueue
	Gate      *ContentionGate
	Policy    DispatchPolicy
	Distances DistanceProvider
	// Trace records every decision when enabled; nil disables tracing.
	Trace *trace.SimulationTrace

	// ProgressEvery logs progress every N stream orders; 0 disables it.
	ProgressEvery int

	pending   []*Order // stream orders not yet pulled, ascending by timestamp
	ingested  int
	processed int
	bundles   int
	forced    int
}

// NewSimulator validates cfg and prepares a run over orders. Order IDs must be
// unique. Orders are stable-sorted by timestamp; equal timestamps keep input order.
func NewSimulator(cfg Config, distances DistanceProvider, orders []*Order) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if distances == nil {
		return nil, fmt.Errorf("distance provider must not be nil")
	}
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if seen[o.ID] {
			return nil, fmt.Errorf("duplicate order id %q", o.ID)
		}
		seen[o.ID] = true
	}
	pending := make([]*Order, len(orders))
	copy(pending, orders)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp.Before(pending[j].Timestamp)
	})

	return &Simulator{
		Config:        cfg,
		Fleet:         NewFleet(cfg.FleetSize, cfg),
		WaitQ:         &WaitQueue{},
		Gate:          NewContentionGate(cfg),
		Policy:        NewDispatchPolicy(cfg.Policy),
		Distances:     distances,
		ProgressEvery: 100,
		pending:       pending,
		ingested:      len(pending),
	}, nil
}

// Run processes the whole order stream, then force-drains the waiting queue.
func (sim *Simulator) Run() {
	logrus.Infof("Dispatching %d orders with %d units (policy=%s)", sim.ingested, sim.Fleet.Len(), sim.Config.Policy)

	for len(sim.pending) > 0 {
		order := sim.pending[0]
		sim.pending = sim.pending[1:]
		if order.Timestamp.After(sim.Clock) {
			sim.Clock = order.Timestamp
		}
		sim.processed++

		if sim.dispatch(order, order.Timestamp, false) {
			sim.retryWaiting()
		}

		if sim.ProgressEvery > 0 && sim.processed%sim.ProgressEvery == 0 {
			logrus.Infof("Processed %d/%d stream orders (%.1f%%), %d waiting",
				sim.processed, sim.ingested, 100*float64(sim.processed)/float64(sim.ingested), sim.WaitQ.Len())
		}
	}

	if sim.WaitQ.Len() > 0 {
		logrus.Warnf("Stream exhausted with %d orders waiting; forcing assignment", sim.WaitQ.Len())
	}
	sim.drain()
	logrus.Infof("Dispatch finished at %s: %d bundles, %d forced", sim.Clock.Format(time.RFC3339), sim.bundles, sim.forced)
}

func (sim *Simulator) state(now time.Time) *DispatchState {
	return &DispatchState{
		Fleet:     sim.Fleet,
		Distances: sim.Distances,
		Gate:      sim.Gate,
		Config:    sim.Config,
		Now:       now,
		GateAt:    sim.Clock,
		Pending:   sim.pending,
	}
}

// dispatch gates and assigns one order, costing it at now. Returns true on
// commit; otherwise the order has been parked in the waiting queue.
func (sim *Simulator) dispatch(order *Order, now time.Time, retried bool) bool {
	active := sim.Gate.ActiveConveyorStations(sim.Fleet, sim.Clock)
	if blockedBy(active, order.Origin, sim.Gate.Capacity(), sim.Config) {
		sim.deferOrder(order, DeferredContention, active)
		return false
	}

	a, ok := sim.Policy.Select(order, sim.state(now))
	if !ok {
		sim.deferOrder(order, DeferredUncostable, active)
		return false
	}
	sim.commit(a, retried, false)
	return true
}

// retryWaiting makes one pass over the queue, oldest order first. Entries
// that cannot be placed are re-enqueued and wait for the next pass.
func (sim *Simulator) retryWaiting() {
	if sim.WaitQ.Len() == 0 {
		return
	}
	for _, e := range sim.WaitQ.Drain() {
		sim.dispatch(e.Order, e.Order.Timestamp, true)
	}
}

// drain force-assigns every waiting order to the earliest-free unit, ignoring
// the gate. A route missing from the distance matrix is costed as zero and
// the record flagged as miscosted.
func (sim *Simulator) drain() {
	for {
		e, ok := sim.WaitQ.PopOldest()
		if !ok {
			return
		}
		u := sim.Fleet.EarliestFree()
		for _, t := range []time.Time{u.FreeAt, e.Order.Timestamp} {
			if t.After(sim.Clock) {
				sim.Clock = t
			}
		}

		orders := []*Order{e.Order}
		trip, err := PlanTrip(u, orders, sim.Distances)
		if err != nil {
			logrus.Warnf("Forced assignment of order %s is miscosted: %v", e.Order.ID, err)
			trip = planForcedTrip(u, orders, sim.Distances)
		}
		sim.commit(Assignment{
			UnitID: u.ID,
			Trip:   trip,
			Cost:   trip.TotalDistance(),
			Reason: "forced (earliest-free)",
		}, false, true)
	}
}

func (sim *Simulator) commit(a Assignment, retried, forced bool) {
	if a.Partner != nil {
		sim.removePending(a.Partner)
		sim.bundles++
	}
	if forced {
		sim.forced++
	}
	records := sim.Fleet.Commit(a.UnitID, a.Trip, sim.Clock, forced)
	logrus.Debugf("[%s] order %s -> unit %d: %s", sim.Clock.Format(time.RFC3339), records[0].Order.ID, a.UnitID, a.Reason)

	if sim.Trace.Enabled() {
		partner := ""
		if a.Partner != nil {
			partner = a.Partner.ID
		}
		sim.Trace.RecordAssignment(trace.AssignmentRecord{
			OrderID:         records[0].Order.ID,
			Instant:         sim.Clock,
			UnitID:          a.UnitID,
			Cost:            a.Cost,
			Reason:          a.Reason,
			Partner:         partner,
			Retried:         retried,
			Forced:          forced,
			Miscosted:       a.Trip.Miscosted,
			ActiveConveyors: len(sim.Gate.ActiveConveyorStations(sim.Fleet, sim.Clock)),
		})
	}
}

func (sim *Simulator) deferOrder(order *Order, reason DeferralReason, active map[string]bool) {
	sim.WaitQ.Enqueue(QueueEntry{Order: order, DeferredAt: sim.Clock, Reason: reason})
	logrus.Debugf("[%s] order %s deferred: %s (active conveyors %v)",
		sim.Clock.Format(time.RFC3339), order.ID, reason, sortedStations(active))

	if sim.Trace.Enabled() {
		sim.Trace.RecordDeferral(trace.DeferralRecord{
			OrderID:        order.ID,
			Instant:        sim.Clock,
			Reason:         string(reason),
			ActiveStations: sortedStations(active),
		})
	}
}

// removePending drops order from the pending stream. Orders are matched by
// identity, never by ID.
func (sim *Simulator) removePending(order *Order) {
	for i, o := range sim.pending {
		if o == order {
			sim.pending = append(sim.pending[:i:i], sim.pending[i+1:]...)
			return
		}
	}
}

// Ingested returns the number of orders the run started with.
func (sim *Simulator) Ingested() int {
	return sim.ingested
}

// Bundles returns the number of consolidated trips committed.
func (sim *Simulator) Bundles() int {
	return sim.bundles
}

// Forced returns the number of orders committed by the forced drain.
func (sim *Simulator) Forced() int {
	return sim.forced
}

// Results returns every served record, ordered by order creation time.
func (sim *Simulator) Results() []ServedOrder {
	var results []ServedOrder
	for _, u := range sim.Fleet.Units() {
		results = append(results, u.History...)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Order.Timestamp.Before(results[j].Order.Timestamp)
	})
	return results
}
