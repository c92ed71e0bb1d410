package cart

import "sergioimports/backend/internal/domain"

// Command is a single cart mutation. Callers build one per user action and
// hand it to Cart.Apply.
type Command interface {
	apply(c *Cart) error
}

type AddItem struct {
	Product  domain.Product
	Quantity int
}

type SetQuantity struct {
	ProductID int64
	Quantity  int
}

type RemoveItem struct {
	ProductID int64
}

type Clear struct{}

func (cmd AddItem) apply(c *Cart) error {
	c.AddItem(cmd.Product, cmd.Quantity)
	return nil
}

func (cmd SetQuantity) apply(c *Cart) error {
	return c.SetQuantity(cmd.ProductID, cmd.Quantity)
}

func (cmd RemoveItem) apply(c *Cart) error {
	c.RemoveItem(cmd.ProductID)
	return nil
}

func (Clear) apply(c *Cart) error {
	c.Clear()
	return nil
}

// Apply runs cmd against the cart.
func (c *Cart) Apply(cmd Command) error {
	return cmd.apply(c)
}
