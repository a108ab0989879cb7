package cart

import (
	"context"
	"os"
	"testing"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/migrate"
	"fluxo-storefront/internal/repository/product"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantities(lines []domain.CartLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] = l.Quantity
	}
	return out
}

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	lines, err := repo.Lines(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, repo.AddQuantity(ctx, "s1", "1", 1))
	require.NoError(t, repo.AddQuantity(ctx, "s1", "2", 2))
	require.NoError(t, repo.AddQuantity(ctx, "s1", "1", 3))
	require.ErrorIs(t, repo.AddQuantity(ctx, "s1", "1", 0), domain.ErrInvalidQuantity)

	lines, err = repo.Lines(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].ProductID)
	assert.Equal(t, map[string]int{"1": 4, "2": 2}, quantities(lines))

	require.NoError(t, repo.SetQuantity(ctx, "s1", "2", 5))
	require.ErrorIs(t, repo.SetQuantity(ctx, "s1", "3", 5), domain.ErrNotFound)
	require.NoError(t, repo.SetQuantity(ctx, "s1", "1", 0))

	lines, err = repo.Lines(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2": 5}, quantities(lines))

	require.NoError(t, repo.AddQuantity(ctx, "s2", "1", 1))
	require.NoError(t, repo.Remove(ctx, "s1", "2"))
	require.NoError(t, repo.Remove(ctx, "s1", "2"))
	lines, err = repo.Lines(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, repo.Clear(ctx, "s2"))
	lines, err = repo.Lines(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemory(t *testing.T) {
	exerciseRepository(t, NewMemory())
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE cart_lines, products, checkout_drafts`)
	require.NoError(t, err)

	products := product.NewPostgres(pool, nil)
	for _, id := range []string{"1", "2", "3"} {
		_, err := products.Upsert(ctx, domain.Product{ID: id, Name: "P" + id, Price: decimal.NewFromInt(10), Category: "Electronics"})
		require.NoError(t, err)
	}

	exerciseRepository(t, NewPostgres(pool))
}
