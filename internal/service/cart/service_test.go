package cart

import (
	"context"
	"errors"
	"testing"

	"fluxo-storefront/internal/domain"
	cartrepo "fluxo-storefront/internal/repository/cart"
	"fluxo-storefront/internal/repository/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	products := product.NewMemory(
		domain.Product{ID: "1", Name: "Wireless Earbuds", Price: decimal.RequireFromString("199.99")},
		domain.Product{ID: "5", Name: "Wireless Mouse", Price: decimal.RequireFromString("29.99")},
	)
	return New(cartrepo.NewMemory(), products)
}

func TestService_AddMergesAndTotals(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "5", 2)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 4, cart.TotalItems)
	assert.Equal(t, "459.96", cart.Subtotal.StringFixed(2))
}

func TestService_AddRejectsUnknownProductAndBadQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Add(ctx, "s1", "404", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Add(ctx, "s1", "1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Add(ctx, "s1", " ", 1)
	assert.Error(t, err)
}

func TestService_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, err := svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "5", 1)
	require.NoError(t, err)

	cart, err := svc.Update(ctx, "s1", "5", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.TotalItems)

	cart, err = svc.Update(ctx, "s1", "5", 0)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	_, err = svc.Update(ctx, "s1", "5", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cart, err = svc.Remove(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Subtotal.IsZero())

	_, err = svc.Add(ctx, "s1", "1", 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "s1"))
	items, err := svc.Items(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

type failingRepo struct {
	cartrepo.Repository
}

func (failingRepo) Lines(context.Context, string) ([]domain.CartLine, error) {
	return nil, errors.New("boom")
}

type staleProducts struct{}

func (staleProducts) GetByID(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func TestService_GetPropagatesRepoError(t *testing.T) {
	svc := New(failingRepo{}, staleProducts{})
	_, err := svc.Get(context.Background(), "s1")
	assert.EqualError(t, err, "boom")
}

func TestService_GetSkipsMissingProducts(t *testing.T) {
	ctx := context.Background()
	repo := cartrepo.NewMemory()
	require.NoError(t, repo.AddQuantity(ctx, "s1", "gone", 2))

	cart, err := New(repo, staleProducts{}).Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems)
}
