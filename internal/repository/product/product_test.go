package product

import (
	"context"
	"os"
	"testing"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ListKeepsNumericOrder(t *testing.T) {
	repo := NewMemory(
		domain.Product{ID: "10", Name: "Ten", Price: decimal.RequireFromString("1.00")},
		domain.Product{ID: "2", Name: "Two", Price: decimal.RequireFromString("2.00")},
		domain.Product{ID: "1", Name: "One", Price: decimal.RequireFromString("3.00")},
	)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestMemory_GetAndUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(domain.Product{ID: "1", Name: "Mouse", Price: decimal.RequireFromString("29.99")})

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	created := got.CreatedAt
	assert.False(t, created.IsZero())

	updated, err := repo.Upsert(ctx, domain.Product{ID: "1", Name: "Silent Mouse", Price: decimal.RequireFromString("31.50")})
	require.NoError(t, err)
	assert.Equal(t, "Silent Mouse", updated.Name)
	assert.Equal(t, created, updated.CreatedAt)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostgres_UpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		ID:       "1",
		Name:     "Wireless Earbuds",
		Price:    decimal.RequireFromString("199.99"),
		Category: "Electronics",
	})
	require.NoError(t, err)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = repo.Upsert(ctx, domain.Product{
		ID:          "1",
		Name:        "Wireless Earbuds Pro",
		Description: "new desc",
		Price:       decimal.RequireFromString("219.90"),
		Category:    "Electronics",
	})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Earbuds Pro", got.Name)
	assert.Equal(t, "new desc", got.Description)
	assert.True(t, decimal.RequireFromString("219.90").Equal(got.Price))

	_, err = repo.GetByID(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_lines, products, checkout_drafts`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
