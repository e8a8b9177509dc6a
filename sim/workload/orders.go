package workload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// ErrMalformedInput is wrapped by every per-record ingestion failure.
var ErrMalformedInput = errors.New("malformed input")

// Column aliases accepted in the order table header (case-insensitive).
var orderColumns = map[string][]string{
	"id":          {"ordem", "order", "order_id", "id"},
	"timestamp":   {"data_hora", "timestamp", "created_at"},
	"material":    {"material"},
	"origin":      {"origem", "origin", "from"},
	"destination": {"destino", "destination", "to"},
	"base":        {"base"},
	"quantity":    {"quantidade", "quantity", "qty"},
}

var requiredOrderColumns = []string{"id", "timestamp", "origin", "destination"}

// TimestampLayouts are tried in order when parsing order timestamps.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// DroppedRecord describes an input row that did not enter the engine.
type DroppedRecord struct {
	Line int
	Err  error
}

// OrderTable is the result of loading an order file.
type OrderTable struct {
	Orders  []*sim.Order // ascending by timestamp; ties keep input order
	Dropped []DroppedRecord
}

// ParseTimestamp parses s with the first matching layout in TimestampLayouts.
// Times without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrMalformedInput, s)
}

// LoadOrders reads an order table. Rows with an unparseable timestamp, a
// blank origin/destination, or an ID already used by an earlier row are
// dropped and reported; the remaining orders are stable-sorted by timestamp.
func LoadOrders(r io.Reader, loc *time.Location) (*OrderTable, error) {
	reader, err := newCSVReader(r)
	if err != nil {
		return nil, err
	}
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading order header: %w", err)
	}
	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	table := &OrderTable{}
	firstLine := make(map[string]int)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading order row %d: %w", line, err)
		}
		order, err := parseOrder(row, index, loc)
		if err == nil {
			if first, dup := firstLine[order.ID]; dup {
				err = fmt.Errorf("%w: duplicate order id %q (first seen on row %d)", ErrMalformedInput, order.ID, first)
			} else {
				firstLine[order.ID] = line
			}
		}
		if err != nil {
			logrus.Warnf("Dropping order row %d: %v", line, err)
			table.Dropped = append(table.Dropped, DroppedRecord{Line: line, Err: err})
			continue
		}
		table.Orders = append(table.Orders, order)
	}

	sort.SliceStable(table.Orders, func(i, j int) bool {
		return table.Orders[i].Timestamp.Before(table.Orders[j].Timestamp)
	})
	return table, nil
}

// LoadOrdersFile opens path and calls LoadOrders.
func LoadOrdersFile(path string, loc *time.Location) (*OrderTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening order table: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file; close error is not actionable
	return LoadOrders(file, loc)
}

func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for field, aliases := range orderColumns {
			for _, alias := range aliases {
				if name == alias {
					if _, dup := index[field]; !dup {
						index[field] = i
					}
				}
			}
		}
	}
	for _, field := range requiredOrderColumns {
		if _, ok := index[field]; !ok {
			return nil, fmt.Errorf("order table: missing %s column (accepted: %s)",
				field, strings.Join(orderColumns[field], ", "))
		}
	}
	return index, nil
}

func cell(row []string, index map[string]int, field string) string {
	i, ok := index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optionalFloat(row []string, index map[string]int, field string) *float64 {
	raw := NormalizeDecimal(cell(row, index, field))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.Debugf("Ignoring non-numeric %s %q", field, raw)
		return nil
	}
	return &v
}

func parseOrder(row []string, index map[string]int, loc *time.Location) (*sim.Order, error) {
	ts, err := ParseTimestamp(cell(row, index, "timestamp"), loc)
	if err != nil {
		return nil, err
	}
	id := cell(row, index, "id")
	origin := cell(row, index, "origin")
	destination := cell(row, index, "destination")
	if id == "" || origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: order id, origin and destination are required", ErrMalformedInput)
	}
	order := sim.NewOrder(id, ts, cell(row, index, "material"), origin, destination)
	order.Base = optionalFloat(row, index, "base")
	order.Quantity = optionalFloat(row, index, "quantity")
	return order, nil
}
