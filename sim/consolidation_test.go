package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatch-sim/dispatch-sim/sim/internal/testutil"
)

// shortcutMatrix makes C lie on the way from A to B: A→B costs 20 but A→C→B costs 10.
func shortcutMatrix() *Matrix {
	m := NewMatrix()
	m.Set("A", "B", 20)
	m.Set("A", "C", 5)
	m.Set("C", "B", 5)
	m.Set("B", "A", 20)
	m.Set("B", "C", 20)
	m.Set("C", "A", 5)
	return m
}

func TestCompatible(t *testing.T) {
	cfg := DefaultConfig(1)
	primary := testOrder("p", 0, "A", "B").WithLoad(10, 10)

	tests := []struct {
		name      string
		candidate *Order
		want      bool
	}{
		{"same base inside window", testOrder("c", 5, "C", "B").WithLoad(10, 10), true},
		{"exactly at window edge", testOrder("c", 15, "C", "B").WithLoad(10, 20), true},
		{"window exceeded", testOrder("c", 20, "C", "B").WithLoad(10, 10), false},
		{"different base", testOrder("c", 5, "C", "B").WithLoad(20, 10), false},
		{"capacity exceeded", testOrder("c", 5, "C", "B").WithLoad(10, 21), false},
		{"candidate without base", testOrder("c", 5, "C", "B"), false},
		{"same order", primary, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(primary, tt.candidate, cfg))
		})
	}
}

func TestCompatible_PrimaryWithoutLoadNeverBundles(t *testing.T) {
	primary := testOrder("p", 0, "A", "B")
	candidate := testOrder("c", 1, "C", "B").WithLoad(10, 1)

	assert.False(t, Compatible(primary, candidate, DefaultConfig(1)))
}

func TestFindBestBundle_PicksCheapestPartner(t *testing.T) {
	// GIVEN one unit and two compatible pending orders, only one on the way
	cfg := DefaultConfig(1)
	m := shortcutMatrix()
	m.Set("A", "D", 50)
	m.Set("D", "B", 50)
	primary := testOrder("p", 0, "A", "B").WithLoad(10, 10)
	onTheWay := testOrder("s1", 5, "C", "B").WithLoad(10, 10)
	detour := testOrder("s2", 3, "D", "B").WithLoad(10, 10)
	state := newTestState(NewFleet(1, cfg), m, cfg, detour, onTheWay)

	// WHEN the best bundle is searched
	a, ok := FindBestBundle(primary, state)

	// THEN the partner on the way wins with cost 10
	require.True(t, ok)
	assert.Equal(t, "s1", a.Partner.ID)
	assert.InDelta(t, 10.0, a.Cost, 1e-9)
	assert.Len(t, a.Trip.Legs, 4)
}

func TestFindBestBundle_SkipsPartnerTheGateWouldBlock(t *testing.T) {
	// GIVEN a gate of capacity 1 and conveyor-fed origins for both orders
	cfg := DefaultConfig(1)
	cfg.GateCapacity = 1
	m := NewMatrix()
	m.Set("Esteira A", "Esteira C", 5)
	m.Set("Esteira C", "B", 5)
	m.Set("Esteira A", "B", 20)
	primary := testOrder("p", 0, "Esteira A", "B").WithLoad(10, 10)
	partner := testOrder("s", 1, "Esteira C", "B").WithLoad(10, 10)

	// WHEN searched
	_, ok := FindBestBundle(primary, newTestState(NewFleet(1, cfg), m, cfg, partner))

	// THEN the primary's own origin fills the gate and the partner is skipped
	assert.False(t, ok)
}

func TestConsolidation_BundlesWhenStrictlyCheaper(t *testing.T) {
	// GIVEN two same-base orders 5 minutes apart where the second is on the way
	orders := []*Order{
		testOrder("p", 0, "A", "B").WithLoad(10, 10),
		testOrder("s", 5, "C", "B").WithLoad(10, 10),
	}

	// WHEN the consolidation policy runs with one unit
	s := runTraced(t, testConfig(1, "consolidation"), shortcutMatrix(), orders)

	// THEN both orders ride one trip departing once the partner exists
	require.Equal(t, 1, s.Bundles())
	results := s.Results()
	require.Len(t, results, 2)
	assert.Equal(t, []string{"s"}, results[0].ConsolidatedWith)
	assert.Equal(t, []string{"p"}, results[1].ConsolidatedWith)
	for _, r := range results {
		assert.Equal(t, testutil.Minutes(5), r.Departure)
		testutil.AssertNotBefore(t, r.Order.ID+" departure", r.Order.Timestamp, r.Departure)
	}
	assert.InDelta(t, 10.0, s.Fleet.Unit(0).TotalDistance, 1e-9)
	require.Len(t, s.Trace.Assignments, 1)
	assert.Equal(t, "s", s.Trace.Assignments[0].Partner)
}

func TestConsolidation_WindowExceeded_FallsBackToSingle(t *testing.T) {
	// GIVEN a 15 minute window and same-base orders 20 minutes apart
	cfg := testConfig(1, "consolidation")
	cfg.ConsolidationWindow = 15 * time.Minute
	orders := []*Order{
		testOrder("p", 0, "A", "B").WithLoad(10, 10),
		testOrder("s", 20, "C", "B").WithLoad(10, 10),
	}

	// WHEN run
	s := runTraced(t, cfg, shortcutMatrix(), orders)

	// THEN no bundle forms and both orders are served on their own
	assert.Equal(t, 0, s.Bundles())
	results := s.Results()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Empty(t, r.ConsolidatedWith)
	}
}

func TestConsolidation_EqualCostKeepsSingleOrder(t *testing.T) {
	// GIVEN a partner with identical origin and destination: the bundle costs
	// exactly what the primary alone costs
	m := symmetricMatrix(map[[2]string]float64{{"A", "B"}: 20})
	orders := []*Order{
		testOrder("p", 0, "A", "B").WithLoad(10, 10),
		testOrder("s", 1, "A", "B").WithLoad(10, 10),
	}

	s := runTraced(t, testConfig(1, "consolidation"), m, orders)

	assert.Equal(t, 0, s.Bundles())
}

func TestConsolidation_EveryBundleIsCompatible(t *testing.T) {
	// GIVEN a mixed stream with two load bases
	orders, m := mixedWorkload(60)
	cfg := testConfig(3, "consolidation")

	// WHEN run
	s := runTraced(t, cfg, m, orders)

	// THEN every bundled pair satisfies base, window and capacity constraints
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	for _, a := range s.Trace.Assignments {
		if a.Partner == "" {
			continue
		}
		assert.True(t, Compatible(byID[a.OrderID], byID[a.Partner], cfg),
			"bundle %s+%s violates compatibility", a.OrderID, a.Partner)
	}
}
