// Defines the Order struct that models a pickup/delivery request and the
// ServedOrder record produced when a transport unit fulfils it.

package sim

import (
	"fmt"
	"time"
)

// Order is a pickup/delivery request. Orders are immutable once ingested;
// the engine only ever reads them.
type Order struct {
	ID          string    // Unique identifier for the order
	Timestamp   time.Time // Creation instant
	Material    string    // Material being moved (informational)
	Origin      string    // Pickup station
	Destination string    // Delivery station

	// Optional consolidation attributes. Base is both the grouping key and the
	// capacity unit: two orders bundle only if they share Base.
	Base     *float64
	Quantity *float64
}

// NewOrder creates an Order without consolidation attributes.
func NewOrder(id string, ts time.Time, material, origin, destination string) *Order {
	return &Order{
		ID:          id,
		Timestamp:   ts,
		Material:    material,
		Origin:      origin,
		Destination: destination,
	}
}

// WithLoad returns a copy of the order carrying base and quantity.
func (o *Order) WithLoad(base, quantity float64) *Order {
	cp := *o
	cp.Base = &base
	cp.Quantity = &quantity
	return &cp
}

// HasLoad reports whether both Base and Quantity are set, which is required
// for the order to act as a consolidation primary.
func (o *Order) HasLoad() bool {
	return o.Base != nil && o.Quantity != nil
}

// QuantityOrZero returns Quantity, or 0 when unset.
func (o *Order) QuantityOrZero() float64 {
	if o.Quantity == nil {
		return 0
	}
	return *o.Quantity
}

func (o Order) String() string {
	return fmt.Sprintf("Order: (ID: %s, Timestamp: %s, Origin: %s, Destination: %s)",
		o.ID, o.Timestamp.Format(time.RFC3339), o.Origin, o.Destination)
}

// ServedOrder is the result record for one order committed to a unit.
// Orders committed together as a bundle each get their own record; the trip-level
// fields (distances, travel times, Departure, Delivery) are shared between them.
type ServedOrder struct {
	Order  *Order
	UnitID int

	Departure time.Time // Instant the unit is dispatched
	Pickup    time.Time // Instant the unit reaches this order's origin
	Delivery  time.Time // Instant the trip completes

	UnloadedDistance float64
	LoadedDistance   float64
	TotalDistance    float64
	UnloadedTravel   time.Duration
	LoadedTravel     time.Duration

	ConsolidatedWith []string // IDs of the other orders in the same trip
	Forced           bool     // Assigned by the end-of-stream drain, ignoring the gate
	Miscosted        bool     // Some leg had no matrix entry and was costed as zero
}

// WaitTime is the time between order creation and unit dispatch.
func (s ServedOrder) WaitTime() time.Duration {
	return s.Departure.Sub(s.Order.Timestamp)
}

// MovementTime is the time between unit dispatch and trip completion.
func (s ServedOrder) MovementTime() time.Duration {
	return s.Delivery.Sub(s.Departure)
}
