package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fluxo-storefront/internal/domain"
	cartrepo "fluxo-storefront/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	AddQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	Remove(ctx context.Context, sessionID, productID string) error
	Clear(ctx context.Context, sessionID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

// Get returns the session cart with product data resolved and totals computed.
// Lines pointing at products that no longer exist are left out.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	lines, err := s.repo.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, domain.CartItem{Product: *product, Quantity: line.Quantity})
	}
	cart := domain.NewCart(sessionID, items)
	return &cart, nil
}

// Items is the read-only snapshot used by checkout.
func (s *Service) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Add puts quantity units of the product in the cart, merging with an existing line.
func (s *Service) Add(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("productId required")
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	if err := s.repo.AddQuantity(ctx, sessionID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

// Update sets the quantity of an existing line; zero or less removes it.
func (s *Service) Update(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if err := s.repo.SetQuantity(ctx, sessionID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *Service) Remove(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if err := s.repo.Remove(ctx, sessionID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Clear(ctx, sessionID)
}
