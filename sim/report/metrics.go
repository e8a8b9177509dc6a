package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// RunRecord is the metrics document written at the end of a run.
type RunRecord struct {
	RunID   string       `yaml:"run_id"`
	Policy  string       `yaml:"policy"`
	Orders  int          `yaml:"orders"`
	Dropped int          `yaml:"dropped_rows"`
	Metrics *sim.Metrics `yaml:"metrics"`
}

// WriteMetricsFile marshals the record as YAML to path.
func WriteMetricsFile(path string, rec RunRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

// ReadMetricsFile parses a record written by WriteMetricsFile.
func ReadMetricsFile(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metrics file: %w", err)
	}
	var rec RunRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing metrics file: %w", err)
	}
	return &rec, nil
}
