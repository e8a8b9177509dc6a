// Package workload loads the engine's inputs: the order table and the
// station-to-station distance matrix. Both are CSV files; the delimiter is
// detected from the header line (comma or semicolon).
package workload

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// newCSVReader buffers r and returns a csv.Reader whose delimiter matches the
// header line: ';' when the header has semicolons and no commas, ',' otherwise.
func newCSVReader(r io.Reader) (*csv.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	header, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	reader := csv.NewReader(bytes.NewReader(data))
	if strings.Contains(string(header), ";") && !strings.Contains(string(header), ",") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader, nil
}

// NormalizeDecimal rewrites a locale decimal comma as a dot. Applying it to
// an already-normalized value returns the value unchanged.
func NormalizeDecimal(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}
