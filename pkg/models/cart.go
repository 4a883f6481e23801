package models

import (
	"time"

	"github.com/shopspring/decimal"
	"musicosbooking.pt/api/pkg/apperr"
)

var (
	ErrInvalidItem      = apperr.Validation("invalid_item", "Item inválido - faltam campos obrigatórios")
	ErrCartItemNotFound = apperr.NotFound("cart_item_not_found", "Item não encontrado no carrinho")
)

// CartItem is one line of a cart. Lines are identified by ID.
type CartItem struct {
	ID       string          `json:"id" bson:"id"`
	Title    string          `json:"title,omitempty" bson:"title,omitempty"`
	Price    decimal.Decimal `json:"price" bson:"price"`
	Quantity int             `json:"quantity" bson:"quantity"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate rejects lines without an id, a positive price or a quantity.
func (i CartItem) Validate() error {
	if i.ID == "" || !i.Price.IsPositive() || i.Quantity < 1 {
		return ErrInvalidItem
	}
	return nil
}

// Cart aggregates line items for a single checkout session. It is not safe for
// concurrent use; each session owns its cart.
type Cart struct {
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartSnapshot struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// AddItem merges item into the line with the same ID, summing quantities, or
// appends a new line.
func (c *Cart) AddItem(item CartItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items[i].Quantity += item.Quantity
			c.touch()
			return nil
		}
	}
	c.Items = append(c.Items, item)
	c.touch()
	return nil
}

// RemoveItem drops every line with id. Removing an absent id is a no-op.
func (c *Cart) RemoveItem(id string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.touch()
}

// SetQuantity replaces the quantity of an existing line; zero removes it.
func (c *Cart) SetQuantity(id string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ID != id {
			continue
		}
		if quantity <= 0 {
			c.RemoveItem(id)
		} else {
			c.Items[i].Quantity = quantity
			c.touch()
		}
		return true
	}
	return false
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Len returns the number of lines, not the sum of quantities.
func (c *Cart) Len() int {
	return len(c.Items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

func (c *Cart) Snapshot() CartSnapshot {
	return CartSnapshot{
		Items:     c.Lines(),
		Total:     c.Total(),
		ItemCount: c.Len(),
	}
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.touch()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

type AddToCartRequest struct {
	ID       string `json:"id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}
