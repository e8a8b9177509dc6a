package workload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGeneratorSpec() *GeneratorSpec {
	return &GeneratorSpec{
		Seed:          7,
		Start:         time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Horizon:       Duration{8 * time.Hour},
		OrdersPerHour: 30,
		Flows: []FlowSpec{{
			ID:           "pallets",
			Material:     "M1",
			Origins:      []string{"Esteira 1", "Esteira 2"},
			Destinations: []string{"Armazem A", "Armazem B"},
			RateFraction: 1,
			Arrival:      ArrivalSpec{Process: "poisson"},
		}},
	}
}

func TestGeneratorSpec_Validate(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name   string
		mutate func(*GeneratorSpec)
	}{
		{"zero start", func(s *GeneratorSpec) { s.Start = time.Time{} }},
		{"zero horizon", func(s *GeneratorSpec) { s.Horizon = Duration{} }},
		{"zero rate", func(s *GeneratorSpec) { s.OrdersPerHour = 0 }},
		{"negative max orders", func(s *GeneratorSpec) { s.MaxOrders = -1 }},
		{"no flows", func(s *GeneratorSpec) { s.Flows = nil }},
		{"missing id", func(s *GeneratorSpec) { s.Flows[0].ID = "" }},
		{"no origins", func(s *GeneratorSpec) { s.Flows[0].Origins = nil }},
		{"zero fraction", func(s *GeneratorSpec) { s.Flows[0].RateFraction = 0 }},
		{"unknown process", func(s *GeneratorSpec) { s.Flows[0].Arrival.Process = "weibull" }},
		{"negative cv", func(s *GeneratorSpec) { s.Flows[0].Arrival.CV = &negative }},
		{"negative base", func(s *GeneratorSpec) { s.Flows[0].Base = &negative }},
		{"inverted quantity", func(s *GeneratorSpec) { s.Flows[0].Quantity = &RangeSpec{Min: 5, Max: 1} }},
		{"duplicate flow", func(s *GeneratorSpec) { s.Flows = append(s.Flows, s.Flows[0]) }},
	}
	require.NoError(t, validGeneratorSpec().Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validGeneratorSpec()
			tc.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoadGeneratorSpec_UnknownKey_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.yaml")
	body := "seed: 1\nstart: 2024-01-01T08:00:00Z\nhorizon: 1h\norders_per_hour: 10\nrate: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := LoadGeneratorSpec(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate")
}

func TestLoadGeneratorSpec_BadDuration_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon: eight hours\n"), 0o644))

	_, err := LoadGeneratorSpec(path)

	require.Error(t, err)
}

func TestLoadGeneratorSpec_Example(t *testing.T) {
	// GIVEN the bundled generator example
	spec, err := LoadGeneratorSpec(filepath.Join("..", "..", "examples", "generator.yaml"))

	// THEN it loads and validates
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, spec.Horizon.Duration)
	assert.Len(t, spec.Flows, 2)
}
