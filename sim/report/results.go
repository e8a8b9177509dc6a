// Package report writes the outputs of a dispatch run: the per-order result
// table, the metrics record, and a Prometheus textfile snapshot.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// TimeLayout is the timestamp format used in the result table.
const TimeLayout = "2006-01-02 15:04:05"

// ResultColumns is the header of the result table, in column order.
var ResultColumns = []string{
	"order_id", "material", "origin", "destination", "unit_id",
	"created_at", "departure", "pickup", "delivery",
	"unloaded_distance", "loaded_distance", "total_distance",
	"unloaded_travel_s", "loaded_travel_s", "wait_s", "movement_s",
	"consolidated_with", "forced", "miscosted",
}

// WriteResults writes one row per served order, in the order given.
func WriteResults(w io.Writer, results []sim.ServedOrder) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ResultColumns); err != nil {
		return fmt.Errorf("writing result header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write(resultRow(r)); err != nil {
			return fmt.Errorf("writing result for order %s: %w", r.Order.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteResultsFile creates path and writes the result table to it.
func WriteResultsFile(path string, results []sim.ServedOrder) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	if err := WriteResults(file, results); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func resultRow(r sim.ServedOrder) []string {
	return []string{
		r.Order.ID,
		r.Order.Material,
		r.Order.Origin,
		r.Order.Destination,
		strconv.Itoa(r.UnitID),
		r.Order.Timestamp.Format(TimeLayout),
		r.Departure.Format(TimeLayout),
		r.Pickup.Format(TimeLayout),
		r.Delivery.Format(TimeLayout),
		formatFloat(r.UnloadedDistance),
		formatFloat(r.LoadedDistance),
		formatFloat(r.TotalDistance),
		formatSeconds(r.UnloadedTravel),
		formatSeconds(r.LoadedTravel),
		formatSeconds(r.WaitTime()),
		formatSeconds(r.MovementTime()),
		strings.Join(r.ConsolidatedWith, "|"),
		strconv.FormatBool(r.Forced),
		strconv.FormatBool(r.Miscosted),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatSeconds(d time.Duration) string {
	return formatFloat(d.Seconds())
}
