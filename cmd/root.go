package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/dispatch-sim/dispatch-sim/sim"
	"github.com/dispatch-sim/dispatch-sim/sim/report"
	"github.com/dispatch-sim/dispatch-sim/sim/trace"
	"github.com/dispatch-sim/dispatch-sim/sim/workload"
)

var (
	// CLI flags for inputs
	ordersPath    string // Order table (CSV)
	distancesPath string // Distance matrix (CSV)
	timezone      string // Zone for timestamps without an offset
	logLevel      string // Log verbosity level

	// CLI flags for the dispatch engine
	units              int           // Fleet size
	policy             string        // Dispatch policy name
	window             time.Duration // Consolidation window
	gateCapacity       int           // Max concurrently active conveyor-fed stations
	speedDivisor       float64       // Distance units travelled per second
	waitWeight         float64       // Cost per second of unit waiting
	capacityMultiplier float64       // Bundle quantity limit in multiples of Base
	conveyorMarker     string        // Substring identifying conveyor-fed stations
	policyConfigPath   string        // YAML policy bundle overriding the flags above

	// CLI flags for outputs
	resultsPath   string // Per-order result table (CSV)
	metricsPath   string // Metrics record (YAML)
	promTextfile  string // Prometheus textfile snapshot
	traceLevel    string // Decision trace verbosity
	progressEvery int    // Progress log interval, in stream orders
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dispatch-sim",
	Short: "Dispatch simulator for facility transport fleets",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dispatch simulation over an order table",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q (valid: none, decisions)", traceLevel)
		}
		if err := runDispatch(cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks the inputs without running the engine
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the order table against the distance matrix",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		missing, err := validateInputs(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if missing > 0 {
			os.Exit(2)
		}
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildConfig assembles the engine configuration: defaults, then flags, then
// the policy bundle for every field it sets.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig(units)
	cfg.Policy = policy
	cfg.ConsolidationWindow = window
	cfg.GateCapacity = gateCapacity
	cfg.SpeedDivisor = speedDivisor
	cfg.WaitCostWeight = waitWeight
	cfg.CapacityMultiplier = capacityMultiplier
	cfg.ConveyorMarker = conveyorMarker

	if policyConfigPath != "" {
		bundle, err := sim.LoadPolicyBundle(policyConfigPath)
		if err != nil {
			return cfg, err
		}
		if err := bundle.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid policy config %s: %w", policyConfigPath, err)
		}
		bundle.ApplyTo(&cfg)
		logrus.Infof("Loaded policy config %s (policy=%s, units=%d)", policyConfigPath, cfg.Policy, cfg.FleetSize)
		if cmd != nil && cmd.Flags().Changed("policy") && bundle.Policy != "" && bundle.Policy != policy {
			logrus.Warnf("--policy=%s overridden by policy config (%s)", policy, bundle.Policy)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadInputs() (*workload.OrderTable, *sim.Matrix, error) {
	if ordersPath == "" || distancesPath == "" {
		return nil, nil, fmt.Errorf("--orders and --distances are required")
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	table, err := workload.LoadOrdersFile(ordersPath, loc)
	if err != nil {
		return nil, nil, err
	}
	matrix, err := workload.LoadDistanceMatrixFile(distancesPath)
	if err != nil {
		return nil, nil, err
	}
	logrus.Infof("Loaded %d orders (%d rows dropped) and %d stations",
		len(table.Orders), len(table.Dropped), len(matrix.Stations()))
	return table, matrix, nil
}

// runDispatch loads the inputs, runs the engine and writes every requested output.
func runDispatch(cfg sim.Config) error {
	table, matrix, err := loadInputs()
	if err != nil {
		return err
	}
	if missing := sim.MissingPairs(matrix, table.Orders, cfg); len(missing) > 0 {
		logrus.Warnf("%d station pairs the fleet may drive are missing from the distance matrix; affected orders will be force-assigned and flagged as miscosted", len(missing))
	}

	runID := uuid.NewString()
	s, err := sim.NewSimulator(cfg, matrix, table.Orders)
	if err != nil {
		return err
	}
	s.ProgressEvery = progressEvery
	s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel), RunID: runID})
	logrus.Infof("Starting run %s", runID)
	s.Run()

	metrics := s.Metrics()
	metrics.Print()
	if s.Trace.Enabled() {
		printTraceSummary(trace.Summarize(s.Trace))
	}

	if resultsPath != "" {
		if err := report.WriteResultsFile(resultsPath, s.Results()); err != nil {
			return err
		}
		logrus.Infof("Results written to %s", resultsPath)
	}
	if metricsPath != "" {
		rec := report.RunRecord{
			RunID:   runID,
			Policy:  cfg.Policy,
			Orders:  s.Ingested(),
			Dropped: len(table.Dropped),
			Metrics: metrics,
		}
		if err := report.WriteMetricsFile(metricsPath, rec); err != nil {
			return err
		}
		logrus.Infof("Metrics written to %s", metricsPath)
	}
	if promTextfile != "" {
		if err := report.WritePromTextfile(promTextfile, runID, cfg.Policy, metrics); err != nil {
			return err
		}
		logrus.Infof("Prometheus textfile written to %s", promTextfile)
	}
	return nil
}

func printTraceSummary(ts *trace.TraceSummary) {
	fmt.Println("=== Decision Trace ===")
	fmt.Printf("Assignments          : %d (%d retried, %d forced)\n", ts.TotalAssignments, ts.RetriedCount, ts.ForcedCount)
	fmt.Printf("Bundled trips        : %d\n", ts.BundleCount)
	fmt.Printf("Mean assignment cost : %.2f\n", ts.MeanCost)
	fmt.Printf("Deferrals            : %d contention, %d uncostable\n",
		ts.DeferralsByReason[string(sim.DeferredContention)], ts.DeferralsByReason[string(sim.DeferredUncostable)])
	fmt.Printf("Peak active conveyors: %d\n", ts.MaxActiveConveyors)
}

// validateInputs reports dropped rows and every leg the fleet may drive under
// cfg that is missing from the matrix. It returns the number of missing pairs.
func validateInputs(cfg sim.Config) (int, error) {
	table, matrix, err := loadInputs()
	if err != nil {
		return 0, err
	}
	for _, d := range table.Dropped {
		fmt.Printf("row %d dropped: %v\n", d.Line, d.Err)
	}
	missing := sim.MissingPairs(matrix, table.Orders, cfg)
	for _, p := range missing {
		fmt.Printf("missing distance: %s -> %s\n", p.From, p.To)
	}
	fmt.Printf("%d orders, %d dropped rows, %d missing pairs\n", len(table.Orders), len(table.Dropped), len(missing))
	return len(missing), nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&ordersPath, "orders", "", "Order table (CSV, comma or semicolon delimited)")
		c.Flags().StringVar(&distancesPath, "distances", "", "Distance matrix (CSV, stations on both axes)")
		c.Flags().StringVar(&timezone, "timezone", "UTC", "Time zone for order timestamps without an offset")
		c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

		// Policy flags also decide which legs validate checks
		c.Flags().StringVar(&policy, "policy", "greedy", "Dispatch policy (fifo, greedy, consolidation)")
		c.Flags().DurationVar(&window, "window", sim.DefaultConsolidationWindow, "Max creation gap between bundled orders")
		c.Flags().Float64Var(&capacityMultiplier, "capacity-multiplier", sim.DefaultCapacityMultiplier, "Bundle quantity limit in multiples of the primary's base")
		c.Flags().StringVar(&policyConfigPath, "policy-config", "", "YAML policy bundle; fields it sets override the flags")
	}

	runCmd.Flags().IntVar(&units, "units", 4, "Number of transport units")
	runCmd.Flags().IntVar(&gateCapacity, "gate-capacity", sim.DefaultGateCapacity, "Max conveyor-fed stations serviced concurrently")
	runCmd.Flags().Float64Var(&speedDivisor, "speed", sim.DefaultSpeedDivisor, "Distance units travelled per second")
	runCmd.Flags().Float64Var(&waitWeight, "wait-weight", sim.DefaultWaitCostWeight, "Cost per second a unit keeps an order waiting")
	runCmd.Flags().StringVar(&conveyorMarker, "conveyor-marker", sim.DefaultConveyorMarker, "Substring identifying conveyor-fed stations")

	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write per-order results to this CSV file")
	runCmd.Flags().StringVar(&metricsPath, "metrics-out", "", "Write the metrics record to this YAML file")
	runCmd.Flags().StringVar(&promTextfile, "prom-textfile", "", "Write metrics in Prometheus text format to this file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().IntVar(&progressEvery, "progress-every", 100, "Log progress every N stream orders (0 disables)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
