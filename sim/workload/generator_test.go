package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

func TestGenerateOrders_Deterministic(t *testing.T) {
	// GIVEN the same spec generated twice
	a, err := GenerateOrders(validGeneratorSpec())
	require.NoError(t, err)
	b, err := GenerateOrders(validGeneratorSpec())
	require.NoError(t, err)

	// THEN the streams are identical
	require.Equal(t, len(a), len(b))
	require.NotEmpty(t, a)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.True(t, a[i].Timestamp.Equal(b[i].Timestamp))
		assert.Equal(t, a[i].Origin, b[i].Origin)
		assert.Equal(t, a[i].Destination, b[i].Destination)
	}
}

func TestGenerateOrders_SortedWithinHorizonWithSequentialIDs(t *testing.T) {
	spec := validGeneratorSpec()
	orders, err := GenerateOrders(spec)
	require.NoError(t, err)

	end := spec.Start.Add(spec.Horizon.Duration)
	assert.Equal(t, "G000001", orders[0].ID)
	for i, o := range orders {
		assert.True(t, o.Timestamp.After(spec.Start))
		assert.True(t, o.Timestamp.Before(end))
		assert.Equal(t, 0, o.Timestamp.Nanosecond(), "timestamps have one-second resolution")
		assert.NotEqual(t, o.Origin, o.Destination)
		if i > 0 {
			assert.False(t, o.Timestamp.Before(orders[i-1].Timestamp))
		}
	}
}

func TestGenerateOrders_MaxOrdersTruncates(t *testing.T) {
	spec := validGeneratorSpec()
	spec.MaxOrders = 5

	orders, err := GenerateOrders(spec)

	require.NoError(t, err)
	assert.Len(t, orders, 5)
	assert.Equal(t, "G000005", orders[4].ID)
}

func TestGenerateOrders_LoadAttributesWithinRange(t *testing.T) {
	spec := validGeneratorSpec()
	base := 10.0
	spec.Flows[0].Base = &base
	spec.Flows[0].Quantity = &RangeSpec{Min: 2, Max: 4}

	orders, err := GenerateOrders(spec)

	require.NoError(t, err)
	for _, o := range orders {
		require.True(t, o.HasLoad())
		assert.Equal(t, 10.0, *o.Base)
		assert.GreaterOrEqual(t, *o.Quantity, 2.0)
		assert.LessOrEqual(t, *o.Quantity, 4.0)
	}
}

func TestGenerateOrders_AddingAFlowDoesNotPerturbExistingFlow(t *testing.T) {
	// GIVEN a single-flow spec and the same spec with a second flow whose
	// rate share keeps the first flow's absolute rate unchanged
	single := validGeneratorSpec()
	double := validGeneratorSpec()
	double.OrdersPerHour = 60
	double.Flows = append(double.Flows, FlowSpec{
		ID:           "returns",
		Material:     "M2",
		Origins:      []string{"Armazem A"},
		Destinations: []string{"Esteira 1"},
		RateFraction: 1,
		Arrival:      ArrivalSpec{Process: "poisson"},
	})

	a, err := GenerateOrders(single)
	require.NoError(t, err)
	b, err := GenerateOrders(double)
	require.NoError(t, err)

	// THEN the first flow's orders are unchanged
	var fromDouble []*sim.Order
	for _, o := range b {
		if o.Material == "M1" {
			fromDouble = append(fromDouble, o)
		}
	}
	require.Equal(t, len(a), len(fromDouble))
	for i := range a {
		assert.True(t, a[i].Timestamp.Equal(fromDouble[i].Timestamp))
		assert.Equal(t, a[i].Destination, fromDouble[i].Destination)
	}
}

func TestGenerateOrders_InvalidSpec_Errors(t *testing.T) {
	spec := validGeneratorSpec()
	spec.Flows = nil
	_, err := GenerateOrders(spec)
	assert.Error(t, err)
}
