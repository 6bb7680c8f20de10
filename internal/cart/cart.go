// Package cart holds the shopper's cart: a pure line-item container, its
// persisted blob form and the session-keyed service that mutates it.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRef is the product snapshot stored with a line.
type ProductRef struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Slug  string          `json:"slug"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// Variant selects an optional color and size. The zero value means none.
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// Line is one product/variant combination and its quantity.
type Line struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Variant  Variant    `json:"variant"`
}

// LineTotal returns price × quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) matches(productID uuid.UUID, variant Variant) bool {
	return l.Product.ID == productID && l.Variant == variant
}

// Cart is the line container. No two lines share (product id, color, size)
// and Total always equals the sum of the line totals.
type Cart struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []Line{}, Total: decimal.Zero}
}

// AddItem increments the matching line or appends a new one. A merged line
// takes the newer product snapshot. Non-positive quantities are ignored.
func (c *Cart) AddItem(product ProductRef, quantity int, variant Variant) {
	if quantity <= 0 {
		return
	}
	if i := c.find(product.ID, variant); i >= 0 {
		c.Items[i].Product = product
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, Line{Product: product, Quantity: quantity, Variant: variant})
	}
	c.recompute()
}

// RemoveItem drops the matching line.
func (c *Cart) RemoveItem(productID uuid.UUID, variant Variant) {
	kept := c.Items[:0]
	for _, line := range c.Items {
		if !line.matches(productID, variant) {
			kept = append(kept, line)
		}
	}
	c.Items = kept
	c.recompute()
}

// UpdateQuantity replaces the matching line's quantity; zero or less removes it.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int, variant Variant) {
	if quantity <= 0 {
		c.RemoveItem(productID, variant)
		return
	}
	if i := c.find(productID, variant); i >= 0 {
		c.Items[i].Quantity = quantity
	}
	c.recompute()
}

// Subtract takes the ordered quantities off the matching lines and drops lines
// that reach zero. Lines absent from ordered are kept as they are.
func (c *Cart) Subtract(ordered []Line) {
	for _, o := range ordered {
		i := c.find(o.Product.ID, o.Variant)
		if i < 0 {
			continue
		}
		c.Items[i].Quantity -= o.Quantity
		if c.Items[i].Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	}
	c.recompute()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []Line{}
	c.Total = decimal.Zero
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Items {
		count += line.Quantity
	}
	return count
}

// Line returns the matching line, if present.
func (c *Cart) Line(productID uuid.UUID, variant Variant) (Line, bool) {
	if i := c.find(productID, variant); i >= 0 {
		return c.Items[i], true
	}
	return Line{}, false
}

// QuantityOf sums the quantity of every line for productID across variants.
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	total := 0
	for _, line := range c.Items {
		if line.Product.ID == productID {
			total += line.Quantity
		}
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) find(productID uuid.UUID, variant Variant) int {
	for i, line := range c.Items {
		if line.matches(productID, variant) {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.LineTotal())
	}
	c.Total = total
	if c.Items == nil {
		c.Items = []Line{}
	}
}
