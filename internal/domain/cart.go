package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a session cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total returns price times quantity for the line.
func (i CartItem) Total() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the read model returned to clients.
type Cart struct {
	SessionID  string          `json:"sessionId"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// NewCart computes the totals for items.
func NewCart(sessionID string, items []CartItem) Cart {
	if items == nil {
		items = []CartItem{}
	}
	c := Cart{SessionID: sessionID, Items: items, Subtotal: decimal.Zero}
	for _, it := range items {
		c.TotalItems += it.Quantity
		c.Subtotal = c.Subtotal.Add(it.Total())
	}
	return c
}

// CartLine is the stored form of a cart item: a product reference and a quantity.
type CartLine struct {
	SessionID string    `json:"sessionId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}
