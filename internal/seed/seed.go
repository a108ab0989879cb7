// Package seed provides the demo catalog and writes it to a product store.
package seed

import (
	"context"
	"fmt"

	"fluxo-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	ID          string
	Name        string
	Description string
	Price       string
	Image       string
	Category    string
}

var products = []productSeed{
	{ID: "1", Name: "Wireless Earbuds", Description: "High-quality wireless earbuds with noise cancellation", Price: "199.99", Image: "/imgs/earbuds.avif", Category: "Electronics"},
	{ID: "2", Name: "Smart Watch", Description: "Feature-rich smartwatch with health tracking", Price: "249.99", Image: "/imgs/smartwatch.png", Category: "Electronics"},
	{ID: "3", Name: "Bluetooth Speaker", Description: "Portable bluetooth speaker with 20h battery life", Price: "129.99", Image: "/imgs/speaker.jpg", Category: "Electronics"},
	{ID: "4", Name: "Laptop Backpack", Description: "Durable backpack with laptop compartment", Price: "59.99", Image: "/imgs/backpack.jpg", Category: "Accessories"},
	{ID: "5", Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with silent click", Price: "29.99", Image: "/imgs/mouse.jpg", Category: "Electronics"},
	{ID: "6", Name: "Mechanical Keyboard", Description: "RGB mechanical keyboard with blue switches", Price: "89.99", Image: "/imgs/keyboard.jpg", Category: "Electronics"},
}

// Catalog returns the demo products.
func Catalog() []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.RequireFromString(p.Price),
			Image:       p.Image,
			Category:    p.Category,
		})
	}
	return out
}

// Apply upserts the demo catalog. It is idempotent.
func Apply(ctx context.Context, w ProductWriter) error {
	for _, p := range Catalog() {
		if _, err := w.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
