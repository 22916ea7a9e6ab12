package cart

import (
	"github.com/google/uuid"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ProductRef is the catalog snapshot a cart needs to add a line.
type ProductRef struct {
	ID    string
	Name  string
	Price pricing.Money
}

// Item is one product entry in a cart. Name and unit price are snapshots
// taken when the line was created; later catalog edits do not touch them.
type Item struct {
	ID          string        `json:"id"`
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	UnitPrice   pricing.Money `json:"unitPrice"`
	Qty         int           `json:"qty"`
}

// Cart accumulates candidate purchases for a single session. It has no
// identity or persistence of its own: it is either discarded or turned into
// an invoice. Items keep insertion order and are unique by product id.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends a new line for the product with quantity 1, or increments the
// existing line's quantity if the product is already in the cart.
func (c *Cart) Add(p ProductRef) {
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Qty++
			return
		}
	}
	c.items = append(c.items, Item{
		ID:          uuid.NewString(),
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Qty:         1,
	})
}

// ChangeQty adds delta to the line's quantity. A resulting quantity of zero
// or below removes the line. Unknown item ids are a no-op.
func (c *Cart) ChangeQty(itemID string, delta int) {
	for i := range c.items {
		if c.items[i].ID != itemID {
			continue
		}
		next := c.items[i].Qty + delta
		if next <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
		c.items[i].Qty = next
		return
	}
}

// Remove deletes the line unconditionally. Unknown item ids are a no-op.
func (c *Cart) Remove(itemID string) {
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Summary derives the cart's totals from its current lines. Totals are never
// stored on the cart.
func (c *Cart) Summary(serviceBps, taxBps int) pricing.Summary {
	lines := make([]pricing.Item, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
	}
	return pricing.Compute(lines, serviceBps, taxBps)
}
