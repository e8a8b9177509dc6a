package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dispatch-sim/dispatch-sim/sim/workload"
)

var (
	generatorSpecPath string // Generator spec (YAML)
	generateOutPath   string // Order table to write (CSV)
)

// generateCmd writes a synthetic order table that "run" can consume
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic order table from a generator spec",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		n, err := generateOrders(generatorSpecPath, generateOutPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Wrote %d orders to %s", n, generateOutPath)
	},
}

// generateOrders loads the spec at specPath and writes the generated orders to outPath.
func generateOrders(specPath, outPath string) (int, error) {
	if specPath == "" || outPath == "" {
		return 0, fmt.Errorf("--spec and --out are required")
	}
	spec, err := workload.LoadGeneratorSpec(specPath)
	if err != nil {
		return 0, err
	}
	orders, err := workload.GenerateOrders(spec)
	if err != nil {
		return 0, err
	}
	if err := workload.WriteOrdersFile(outPath, orders); err != nil {
		return 0, err
	}
	return len(orders), nil
}

func init() {
	generateCmd.Flags().StringVar(&generatorSpecPath, "spec", "", "Generator spec (YAML)")
	generateCmd.Flags().StringVar(&generateOutPath, "out", "", "Order table to write (CSV)")
	generateCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.AddCommand(generateCmd)
}
