// Package cart holds the session-resident shopping cart.
//
// A Cart is a plain value: it is decoded from the session at the start of a
// request, mutated by the handlers and encoded back before the response is
// written. Line totals are computed once, when an item is added, from the
// product price at that moment.
package cart

import (
	"encoding/gob"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/medicart/internal/models"
)

func init() {
	gob.Register(Cart{})
}

type Item struct {
	ProductID uuid.UUID
	Name      string
	LineTotal decimal.Decimal
	Quantity  int
	ImageURL  string
}

// NewItem snapshots the product for the cart. quantity must be positive.
func NewItem(p *models.Product, quantity int) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		LineTotal: p.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Quantity:  quantity,
		ImageURL:  p.ImageURL,
	}
}

// UnitPrice is derived from the stored line total, rounded to cents.
func (i Item) UnitPrice() decimal.Decimal {
	if i.Quantity == 0 {
		return decimal.Zero
	}
	return i.LineTotal.DivRound(decimal.NewFromInt(int64(i.Quantity)), 2)
}

type Cart struct {
	Items []Item
}

func (c *Cart) Len() int { return len(c.Items) }

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

// Add appends the item and returns the new cart size.
func (c *Cart) Add(item Item) int {
	c.Items = append(c.Items, item)
	return len(c.Items)
}

// Remove drops the entry at index. Out of range indexes are ignored and
// reported with false.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal)
	}
	return total
}

// Snapshot returns a copy that later mutations of c do not affect.
func (c *Cart) Snapshot() Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
