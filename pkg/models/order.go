package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a placed order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// rank orders the forward path. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderPreparing: 2,
	OrderReady:     3,
	OrderCompleted: 4,
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderCancelled
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo reports whether the backend may move an order from s to next.
// Status only moves forward along pending, confirmed, preparing, ready,
// completed; any non-terminal status may divert to cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !s.IsValid() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	from, ok := statusRank[s]
	to, ok2 := statusRank[next]
	if !ok || !ok2 {
		return false
	}
	// pending may skip confirmation and go straight to preparing
	return to == from+1 || (s == OrderPending && next == OrderPreparing)
}

// ClientCancellable reports whether the student may cancel in this status
func (s OrderStatus) ClientCancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// OrderLine is one item of a placed order
type OrderLine struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal is price times quantity
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a placed order as reported by the backend.
// Total and Slot are canonical; the backend's total_amount and slot_time
// duplicates are folded in while decoding.
type Order struct {
	ID               string          `json:"id"`
	VendorID         string          `json:"vendor_id"`
	VendorName       string          `json:"vendor_name,omitempty"`
	Items            []OrderLine     `json:"items"`
	Total            decimal.Decimal `json:"total"`
	Status           OrderStatus     `json:"status"`
	Slot             TimeSlot        `json:"slot"`
	CreatedAt        time.Time       `json:"created_at"`
	EstimatedMinutes int             `json:"estimated_minutes,omitempty"`

	slotTime string
}

// CanCancel reports whether the student may still cancel this order
func (o Order) CanCancel() bool {
	return o.Status.ClientCancellable()
}

// ItemCount sums line quantities
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}

// SlotLabel is the pickup window for display
func (o Order) SlotLabel() string {
	if label := o.Slot.Label(); label != "" {
		return label
	}
	return o.slotTime
}

// UnmarshalJSON accepts the several shapes the backend uses for orders
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var wire struct {
		plain
		OrderID     string           `json:"order_id"`
		SlotID      string           `json:"slot_id"`
		SlotTime    string           `json:"slot_time"`
		TotalAmount *decimal.Decimal `json:"total_amount"`
		RawTotal    json.RawMessage  `json:"total"`
		RawCreated  string           `json:"created_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*o = Order(wire.plain)
	if o.ID == "" {
		o.ID = wire.OrderID
	}
	if o.Slot.ID == "" {
		o.Slot.ID = wire.SlotID
	}
	o.slotTime = wire.SlotTime
	switch {
	case len(wire.RawTotal) > 0 && string(wire.RawTotal) != "null":
		if err := json.Unmarshal(wire.RawTotal, &o.Total); err != nil {
			return err
		}
	case wire.TotalAmount != nil:
		o.Total = *wire.TotalAmount
	}
	if wire.RawCreated != "" {
		o.CreatedAt = parseTimestamp(wire.RawCreated)
	}
	if o.Total.IsZero() && len(o.Items) > 0 {
		for _, l := range o.Items {
			o.Total = o.Total.Add(l.Subtotal())
		}
	}
	return nil
}

// parseTimestamp accepts RFC3339 and the zone-less form some services emit
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
