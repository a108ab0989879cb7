package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"fluxo-storefront/internal/domain"
)

type memoryRepo struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	order    []string
}

// NewMemory returns an in-process catalog preloaded with products, in the given order.
func NewMemory(products ...domain.Product) Repository {
	r := &memoryRepo{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		r.put(p)
	}
	return r
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.products[id])
	}
	return result, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.products[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	}
	r.put(product)
	p := r.products[product.ID]
	return &p, nil
}

func (r *memoryRepo) put(p domain.Product) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, ok := r.products[p.ID]; !ok {
		r.order = append(r.order, p.ID)
		sort.SliceStable(r.order, func(i, j int) bool { return lessID(r.order[i], r.order[j]) })
	}
	r.products[p.ID] = p
}

// lessID orders numeric ids numerically ("2" < "10") and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
