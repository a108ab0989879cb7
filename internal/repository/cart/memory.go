package cart

import (
	"context"
	"sync"
	"time"

	"fluxo-storefront/internal/domain"
)

type memoryRepo struct {
	mu    sync.Mutex
	lines map[string][]domain.CartLine
}

func NewMemory() Repository {
	return &memoryRepo{lines: make(map[string][]domain.CartLine)}
}

func (r *memoryRepo) Lines(_ context.Context, sessionID string) ([]domain.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.CartLine(nil), r.lines[sessionID]...), nil
}

func (r *memoryRepo) AddQuantity(_ context.Context, sessionID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[sessionID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			return nil
		}
	}
	r.lines[sessionID] = append(lines, domain.CartLine{
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r *memoryRepo) SetQuantity(_ context.Context, sessionID, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[sessionID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			r.lines[sessionID] = append(lines[:i:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = quantity
		}
		return nil
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) Remove(ctx context.Context, sessionID, productID string) error {
	err := r.SetQuantity(ctx, sessionID, productID, 0)
	if err == domain.ErrNotFound {
		return nil
	}
	return err
}

func (r *memoryRepo) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.lines, sessionID)
	r.mu.Unlock()
	return nil
}
