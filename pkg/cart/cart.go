// Package cart keeps the in-memory item selection for one vendor session.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/itsneelabh/campusbite/pkg/models"
)

// Line is one menu item with its chosen quantity. Quantity is always >= 1.
type Line struct {
	Item     models.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is derived from the lines on every call
type Totals struct {
	ItemCount  int
	TotalPrice decimal.Decimal
}

// Cart holds lines in the order items were first added.
// It is owned by a single session and not safe for concurrent use.
type Cart struct {
	lines []Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// AddItem increments the line for item, appending it with quantity 1 if absent
func (c *Cart) AddItem(item models.MenuItem) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// SetQuantity sets the quantity of an existing line. qty <= 0 removes it.
// Unknown item ids are ignored.
func (c *Cart) SetQuantity(itemID string, qty int) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = qty
}

// RemoveItem drops the line for itemID if present
func (c *Cart) RemoveItem(itemID string) {
	if i := c.index(itemID); i >= 0 {
		c.removeAt(i)
	}
}

// Totals sums quantities and quantity*price across all lines
func (c *Cart) Totals() Totals {
	t := Totals{TotalPrice: decimal.Zero}
	for _, l := range c.lines {
		t.ItemCount += l.Quantity
		t.TotalPrice = t.TotalPrice.Add(l.Subtotal())
	}
	return t
}

// Quantity returns the current quantity for itemID, or 0
func (c *Cart) Quantity(itemID string) int {
	if i := c.index(itemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of distinct items
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Clear removes every line
func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) index(itemID string) int {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// TotalsOf computes totals for an arbitrary line list
func TotalsOf(lines []Line) Totals {
	c := Cart{lines: lines}
	return c.Totals()
}
