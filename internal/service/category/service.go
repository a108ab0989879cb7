package category

import (
	"context"
	"sort"
	"strings"

	"fluxo-storefront/internal/domain"
)

type productLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type Service struct {
	products productLister
}

func New(products productLister) *Service {
	return &Service{products: products}
}

// List returns the distinct product categories sorted by name. Categories
// differing only in case are merged under the first spelling seen.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*domain.Category)
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		c, ok := byKey[key]
		if !ok {
			c = &domain.Category{Key: key, Name: name}
			byKey[key] = c
		}
		c.ProductCount++
	}
	out := make([]domain.Category, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
