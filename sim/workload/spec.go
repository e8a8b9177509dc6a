package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GeneratorSpec describes a synthetic order stream.
// Loaded from YAML via LoadGeneratorSpec(path).
type GeneratorSpec struct {
	Seed          int64      `yaml:"seed"`
	Start         time.Time  `yaml:"start"`
	Horizon       Duration   `yaml:"horizon"`
	OrdersPerHour float64    `yaml:"orders_per_hour"`
	MaxOrders     int        `yaml:"max_orders,omitempty"` // 0 = horizon only
	Flows         []FlowSpec `yaml:"flows"`
}

// FlowSpec is one stream of orders leaving a set of origins for a set of destinations.
type FlowSpec struct {
	ID           string      `yaml:"id"`
	Material     string      `yaml:"material"`
	Origins      []string    `yaml:"origins"`
	Destinations []string    `yaml:"destinations"`
	RateFraction float64     `yaml:"rate_fraction"`
	Arrival      ArrivalSpec `yaml:"arrival"`
	Base         *float64    `yaml:"base,omitempty"`
	Quantity     *RangeSpec  `yaml:"quantity,omitempty"`
}

// ArrivalSpec selects the inter-arrival process.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"`
}

// RangeSpec is a closed interval sampled uniformly.
type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Duration wraps time.Duration so YAML can carry "8h" style values.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = parsed
	return nil
}

var validArrivalProcesses = map[string]bool{"poisson": true, "gamma": true, "constant": true}

// LoadGeneratorSpec reads and validates a generator spec. Unknown keys are rejected.
func LoadGeneratorSpec(path string) (*GeneratorSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator spec: %w", err)
	}
	var spec GeneratorSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing generator spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks rates, horizon and every flow.
func (s *GeneratorSpec) Validate() error {
	if s.Start.IsZero() {
		return fmt.Errorf("start must be set")
	}
	if s.Horizon.Duration <= 0 {
		return fmt.Errorf("horizon must be positive, got %s", s.Horizon.Duration)
	}
	if err := validateFinitePositive("orders_per_hour", s.OrdersPerHour); err != nil {
		return err
	}
	if s.MaxOrders < 0 {
		return fmt.Errorf("max_orders must be non-negative, got %d", s.MaxOrders)
	}
	if len(s.Flows) == 0 {
		return fmt.Errorf("at least one flow required")
	}
	seen := make(map[string]bool)
	for i := range s.Flows {
		if err := validateFlow(&s.Flows[i], i); err != nil {
			return err
		}
		if seen[s.Flows[i].ID] {
			return fmt.Errorf("duplicate flow id %q", s.Flows[i].ID)
		}
		seen[s.Flows[i].ID] = true
	}
	return nil
}

func validateFlow(f *FlowSpec, idx int) error {
	prefix := fmt.Sprintf("flow[%d]", idx)
	if f.ID == "" {
		return fmt.Errorf("%s: id required", prefix)
	}
	if len(f.Origins) == 0 || len(f.Destinations) == 0 {
		return fmt.Errorf("%s: origins and destinations required", prefix)
	}
	if err := validateFinitePositive(prefix+".rate_fraction", f.RateFraction); err != nil {
		return err
	}
	if !validArrivalProcesses[f.Arrival.Process] {
		return fmt.Errorf("%s: unknown arrival process %q; valid: poisson, gamma, constant", prefix, f.Arrival.Process)
	}
	if f.Arrival.CV != nil {
		if err := validateFinitePositive(prefix+".cv", *f.Arrival.CV); err != nil {
			return err
		}
	}
	if f.Base != nil {
		if err := validateFinitePositive(prefix+".base", *f.Base); err != nil {
			return err
		}
	}
	if f.Quantity != nil && (f.Quantity.Min < 0 || f.Quantity.Max < f.Quantity.Min) {
		return fmt.Errorf("%s: quantity range [%v, %v] is invalid", prefix, f.Quantity.Min, f.Quantity.Max)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) || val <= 0 {
		return fmt.Errorf("%s must be a finite positive number, got %v", name, val)
	}
	return nil
}
