package workload

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// LoadDistanceMatrix reads a square distance table: the header row and the
// first column name the stations, every other cell is the distance from the
// row station to the column station. Blank cells leave the pair undefined.
// Decimal commas are normalized before parsing.
func LoadDistanceMatrix(r io.Reader) (*sim.Matrix, error) {
	reader, err := newCSVReader(r)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading distance matrix: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("distance matrix needs a header row and at least one station row, got %d rows", len(rows))
	}

	header := rows[0]
	columns := make([]string, len(header))
	for j := 1; j < len(header); j++ {
		columns[j] = strings.TrimSpace(header[j])
	}

	m := sim.NewMatrix()
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		from := strings.TrimSpace(row[0])
		if from == "" {
			return nil, fmt.Errorf("distance matrix row %d: missing station name", i+2)
		}
		for j := 1; j < len(row) && j < len(columns); j++ {
			cell := NormalizeDecimal(row[j])
			if cell == "" || columns[j] == "" {
				continue
			}
			d, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("distance matrix row %d (%s), column %s: %w", i+2, from, columns[j], err)
			}
			if d < 0 {
				return nil, fmt.Errorf("distance matrix row %d (%s), column %s: negative distance %v", i+2, from, columns[j], d)
			}
			m.Set(from, columns[j], d)
		}
	}
	return m, nil
}

// LoadDistanceMatrixFile opens path and calls LoadDistanceMatrix.
func LoadDistanceMatrixFile(path string) (*sim.Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening distance matrix: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file; close error is not actionable
	return LoadDistanceMatrix(file)
}
