package models

import (
	"fmt"
	"sort"
)

// CartKey identifies one selectable line in the stall ordering flow:
// a spec within a product series.
type CartKey struct {
	ProductID uint
	SpecName  string
}

// CartLine is one resolved line item in a checkout session.
type CartLine struct {
	ProductID  uint   `json:"product_id"`
	SeriesName string `json:"seriesName"`
	SpecName   string `json:"specName"`
	UnitPrice  int    `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
}

// Cart is an explicit checkout-session value for the stall flow: a mapping
// from (product, spec) to quantity. It is passed down, not ambient state,
// so the selection logic is testable without a UI harness.
type Cart struct {
	items map[CartKey]CartLine
}

// NewCart creates an empty checkout session.
func NewCart() *Cart {
	return &Cart{items: make(map[CartKey]CartLine)}
}

// Add increases the quantity for the given spec line by delta, creating the
// line if absent. A non-positive resulting quantity removes the line.
func (c *Cart) Add(product Product, spec Spec, delta int) {
	key := CartKey{ProductID: product.ID, SpecName: spec.SpecName}
	line, ok := c.items[key]
	if !ok {
		line = CartLine{
			ProductID:  product.ID,
			SeriesName: product.SeriesName,
			SpecName:   spec.SpecName,
			UnitPrice:  spec.Price,
		}
	}
	line.Quantity += delta
	if line.Quantity <= 0 {
		delete(c.items, key)
		return
	}
	c.items[key] = line
}

// Remove drops the line for the given spec entirely.
func (c *Cart) Remove(productID uint, specName string) {
	delete(c.items, CartKey{ProductID: productID, SpecName: specName})
}

// Clear empties the session.
func (c *Cart) Clear() {
	c.items = make(map[CartKey]CartLine)
}

// Lines returns the line items ordered by product then spec name, so the
// rendered order content is deterministic.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.items))
	for _, line := range c.items {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].SpecName < lines[j].SpecName
	})
	return lines
}

// Total sums unit price times quantity across all lines.
func (c *Cart) Total() int {
	total := 0
	for _, line := range c.items {
		total += line.UnitPrice * line.Quantity
	}
	return total
}

// IsEmpty reports whether the session has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ContentBlock renders the session as the free-text line-item block stored
// in a badge order's title field, one "series - spec x qty" entry per line.
func (c *Cart) ContentBlock() string {
	block := ""
	for i, line := range c.Lines() {
		if i > 0 {
			block += "\n"
		}
		block += fmt.Sprintf("%s - %s x%d (NT$ %d)", line.SeriesName, line.SpecName, line.Quantity, line.UnitPrice*line.Quantity)
	}
	return block
}
