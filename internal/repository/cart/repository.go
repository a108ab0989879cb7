package cart

import (
	"context"

	"fluxo-storefront/internal/domain"
)

// Repository stores cart lines per session. Lines come back in insertion order.
type Repository interface {
	Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	// AddQuantity creates the line or increments an existing one by quantity.
	AddQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	// SetQuantity overwrites an existing line; quantity <= 0 removes it.
	// Returns domain.ErrNotFound when the line does not exist.
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	Remove(ctx context.Context, sessionID, productID string) error
	Clear(ctx context.Context, sessionID string) error
}
