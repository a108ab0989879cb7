package category

import (
	"context"
	"errors"
	"testing"

	"fluxo-storefront/internal/domain"
	productrepo "fluxo-storefront/internal/repository/product"
	"fluxo-storefront/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLister struct{}

func (failingLister) List(context.Context) ([]domain.Product, error) {
	return nil, errors.New("db down")
}

func TestList_DerivesFromCatalog(t *testing.T) {
	svc := New(productrepo.NewMemory(seed.Catalog()...))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{
		{Key: "accessories", Name: "Accessories", ProductCount: 1},
		{Key: "electronics", Name: "Electronics", ProductCount: 5},
	}, got)
}

func TestList_MergesCaseAndSkipsBlank(t *testing.T) {
	svc := New(productrepo.NewMemory(
		domain.Product{ID: "1", Category: "Audio"},
		domain.Product{ID: "2", Category: "audio"},
		domain.Product{ID: "3", Category: " "},
	))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ProductCount)
	assert.Equal(t, "audio", got[0].Key)
}

func TestList_PropagatesError(t *testing.T) {
	_, err := New(failingLister{}).List(context.Background())
	require.Error(t, err)
}
