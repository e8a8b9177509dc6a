package sim

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dispatch-sim/dispatch-sim/sim/internal/testutil"
	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

// symmetricMatrix builds a Matrix where every listed pair is defined in both directions.
func symmetricMatrix(pairs map[[2]string]float64) *Matrix {
	m := NewMatrix()
	for k, d := range pairs {
		m.Set(k[0], k[1], d)
		m.Set(k[1], k[0], d)
	}
	return m
}

// completeMatrix defines every ordered pair of stations with distance fn(i, j).
func completeMatrix(stations []string, fn func(i, j int) float64) *Matrix {
	m := NewMatrix()
	for i, from := range stations {
		for j, to := range stations {
			if i != j {
				m.Set(from, to, fn(i, j))
			}
		}
	}
	return m
}

// testOrder creates an order created minutes after testutil.T0.
func testOrder(id string, minutes int, origin, destination string) *Order {
	return NewOrder(id, testutil.Minutes(minutes), "M", origin, destination)
}

func testConfig(units int, policy string) Config {
	cfg := DefaultConfig(units)
	cfg.Policy = policy
	return cfg
}

// runTraced builds a simulator with decision tracing, runs it, and returns it.
func runTraced(t *testing.T, cfg Config, dp DistanceProvider, orders []*Order) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, dp, orders)
	require.NoError(t, err)
	s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	s.Run()
	return s
}

// mixedWorkload generates a deterministic stream over plain and conveyor-fed
// stations, with two load bases so consolidation has something to pair.
func mixedWorkload(n int) ([]*Order, *Matrix) {
	stations := []string{"Doca 1", "Doca 2", "Esteira 1", "Esteira 2", "Esteira 3", "Armazem A", "Armazem B"}
	m := completeMatrix(stations, func(i, j int) float64 {
		return float64(40 + 15*((i*3+j*5)%7))
	})
	orders := make([]*Order, n)
	for k := 0; k < n; k++ {
		origin := stations[(k*2)%len(stations)]
		dest := stations[(k*5+1)%len(stations)]
		if dest == origin {
			dest = stations[(k*5+2)%len(stations)]
		}
		o := NewOrder(fmt.Sprintf("O%03d", k), testutil.At(time.Duration(k*37)*time.Second), "M", origin, dest)
		base := float64(10 + 10*(k%2))
		orders[k] = o.WithLoad(base, float64(5+k%4))
	}
	return orders, m
}

// commitAtCreation commits trip as if decided when its first order was created.
func commitAtCreation(f *Fleet, unitID int, trip Trip) []ServedOrder {
	return f.Commit(unitID, trip, trip.Orders[0].Timestamp, false)
}

// maxConcurrentConveyors returns the largest number of distinct conveyor-fed
// origins whose gated trips are in flight (Departure < t < Delivery) at any
// instant. Forced records are ignored.
func maxConcurrentConveyors(cfg Config, results []ServedOrder) int {
	var trips []ServedOrder
	for _, r := range results {
		if !r.Forced && cfg.IsConveyorFed(r.Order.Origin) {
			trips = append(trips, r)
		}
	}
	peak := 0
	for _, first := range trips {
		// Open intervals peak just after some departure.
		t := first.Departure.Add(time.Nanosecond)
		active := make(map[string]bool)
		for _, r := range trips {
			if r.Departure.Before(t) && t.Before(r.Delivery) {
				active[r.Order.Origin] = true
			}
		}
		if len(active) > peak {
			peak = len(active)
		}
	}
	return peak
}

// saturatingWorkload sends most orders from four conveyor-fed stations every
// 5 seconds while each trip lasts at least 30 seconds, so the gate is busy
// under every policy.
func saturatingWorkload(n int) ([]*Order, *Matrix) {
	conveyors := []string{"Esteira 1", "Esteira 2", "Esteira 3", "Esteira 4"}
	stations := append([]string{"Doca 1", "Doca 2", "Armazem"}, conveyors...)
	m := completeMatrix(stations, func(i, j int) float64 { return 300 })
	orders := make([]*Order, n)
	for k := 0; k < n; k++ {
		origin := conveyors[k%len(conveyors)]
		if k%3 == 2 {
			origin = "Armazem"
		}
		dest := []string{"Doca 1", "Doca 2"}[k%2]
		o := NewOrder(fmt.Sprintf("S%03d", k), testutil.At(time.Duration(k*5)*time.Second), "M", origin, dest)
		orders[k] = o.WithLoad(10, 5)
	}
	return orders, m
}
