package sim

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// PolicyBundle holds dispatch policy configuration, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and do not override the CLI configuration.
// String fields use empty string for "not set".
type PolicyBundle struct {
	Policy        string              `yaml:"policy"`
	Units         *int                `yaml:"units"`
	Consolidation ConsolidationConfig `yaml:"consolidation"`
	Gate          GateConfig          `yaml:"gate"`
	Cost          CostConfig          `yaml:"cost"`
}

// ConsolidationConfig holds the bundling parameters.
type ConsolidationConfig struct {
	Window             *time.Duration `yaml:"window"`
	CapacityMultiplier *float64       `yaml:"capacity_multiplier"`
}

// GateConfig holds the contention gate parameters.
type GateConfig struct {
	Capacity       *int   `yaml:"capacity"`
	ConveyorMarker string `yaml:"conveyor_marker"`
}

// CostConfig holds the travel and cost model parameters.
type CostConfig struct {
	WaitWeight   *float64 `yaml:"wait_weight"`
	SpeedDivisor *float64 `yaml:"speed_divisor"`
}

// LoadPolicyBundle reads and parses a YAML policy configuration file.
// Unknown keys are rejected so that typos surface as errors.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// ValidDispatchPolicies is the set of recognized dispatch policy names.
// Shared by Validate() and NewDispatchPolicy() to avoid duplication.
var ValidDispatchPolicies = map[string]bool{"": true, "fifo": true, "greedy": true, "consolidation": true}

// IsValidDispatchPolicy returns true if name is a recognized dispatch policy.
func IsValidDispatchPolicy(name string) bool {
	return ValidDispatchPolicies[name]
}

// ValidDispatchPolicyNames returns the non-empty policy names in sorted order, for help text.
func ValidDispatchPolicyNames() []string {
	names := make([]string, 0, len(ValidDispatchPolicies))
	for name := range ValidDispatchPolicies {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Validate checks the policy name and parameter ranges in the bundle.
func (b *PolicyBundle) Validate() error {
	if !IsValidDispatchPolicy(b.Policy) {
		return fmt.Errorf("unknown dispatch policy %q", b.Policy)
	}
	if b.Units != nil && *b.Units <= 0 {
		return fmt.Errorf("units must be positive, got %d", *b.Units)
	}
	if b.Consolidation.Window != nil && *b.Consolidation.Window < 0 {
		return fmt.Errorf("consolidation window must be non-negative, got %s", *b.Consolidation.Window)
	}
	if b.Consolidation.CapacityMultiplier != nil && *b.Consolidation.CapacityMultiplier < 0 {
		return fmt.Errorf("capacity_multiplier must be non-negative, got %f", *b.Consolidation.CapacityMultiplier)
	}
	if b.Gate.Capacity != nil && *b.Gate.Capacity <= 0 {
		return fmt.Errorf("gate capacity must be positive, got %d", *b.Gate.Capacity)
	}
	if b.Cost.WaitWeight != nil && *b.Cost.WaitWeight < 0 {
		return fmt.Errorf("wait_weight must be non-negative, got %f", *b.Cost.WaitWeight)
	}
	if b.Cost.SpeedDivisor != nil && *b.Cost.SpeedDivisor <= 0 {
		return fmt.Errorf("speed_divisor must be positive, got %f", *b.Cost.SpeedDivisor)
	}
	return nil
}

// ApplyTo overrides cfg with every field the bundle sets.
func (b *PolicyBundle) ApplyTo(cfg *Config) {
	if b.Policy != "" {
		cfg.Policy = b.Policy
	}
	if b.Units != nil {
		cfg.FleetSize = *b.Units
	}
	if b.Consolidation.Window != nil {
		cfg.ConsolidationWindow = *b.Consolidation.Window
	}
	if b.Consolidation.CapacityMultiplier != nil {
		cfg.CapacityMultiplier = *b.Consolidation.CapacityMultiplier
	}
	if b.Gate.Capacity != nil {
		cfg.GateCapacity = *b.Gate.Capacity
	}
	if b.Gate.ConveyorMarker != "" {
		cfg.ConveyorMarker = b.Gate.ConveyorMarker
	}
	if b.Cost.WaitWeight != nil {
		cfg.WaitCostWeight = *b.Cost.WaitWeight
	}
	if b.Cost.SpeedDivisor != nil {
		cfg.SpeedDivisor = *b.Cost.SpeedDivisor
	}
}
