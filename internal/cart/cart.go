package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/domain"
)

var (
	ErrStockExceeded = errors.New("quantity exceeds available stock")
	ErrLineNotFound  = errors.New("product is not in the cart")
)

// Cart is the pending, unpersisted sale of the terminal session.
// Lines keep insertion order and at most one line exists per product.
type Cart struct {
	mu    sync.Mutex
	lines []domain.CartItem
}

func New() *Cart {
	return &Cart{}
}

// AddItem merges qty into the product's line or appends a snapshot of it.
// Stock is not checked here; the ceiling applies on SetQuantity only.
func (c *Cart) AddItem(product domain.Product, qty int) {
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == product.ID {
			c.lines[i].Quantity += qty
			return
		}
	}

	c.lines = append(c.lines, domain.CartItem{
		ProductID:    product.ID,
		Name:         product.Name,
		Price:        product.Price,
		Quantity:     qty,
		StockCeiling: product.Stock,
	})
}

// SetQuantity replaces a line quantity. Zero or less removes the line.
func (c *Cart) SetQuantity(productID int64, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	}

	line := c.lines[idx]
	if qty > line.StockCeiling {
		return fmt.Errorf("%w: %s has %d available", ErrStockExceeded, line.Name, line.StockCeiling)
	}
	c.lines[idx].Quantity = qty
	return nil
}

func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexLocked(productID); idx >= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartItem, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return c.Len() == 0
}

// Subtotal is the unrounded sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.Lines() {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

func (c *Cart) indexLocked(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
