package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// orderHeader is the column layout WriteOrders produces; LoadOrders reads it back.
var orderHeader = []string{"ordem", "data_hora", "material", "origem", "destino", "base", "quantidade"}

const orderTimeLayout = "2006-01-02 15:04:05"

// WriteOrders writes orders as a semicolon-delimited order table.
func WriteOrders(w io.Writer, orders []*sim.Order) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(orderHeader); err != nil {
		return fmt.Errorf("writing order header: %w", err)
	}
	for _, o := range orders {
		row := []string{o.ID, o.Timestamp.Format(orderTimeLayout), o.Material, o.Origin, o.Destination, "", ""}
		if o.Base != nil {
			row[5] = strconv.FormatFloat(*o.Base, 'f', -1, 64)
		}
		if o.Quantity != nil {
			row[6] = strconv.FormatFloat(*o.Quantity, 'f', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing order %s: %w", o.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteOrdersFile creates path and writes the order table to it.
func WriteOrdersFile(path string, orders []*sim.Order) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating order table: %w", err)
	}
	if err := WriteOrders(file, orders); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
