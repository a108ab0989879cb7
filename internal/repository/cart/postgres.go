package cart

import (
	"context"

	"fluxo-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	const q = `
SELECT session_id, product_id, quantity, created_at
FROM cart_lines
WHERE session_id = $1
ORDER BY created_at ASC, product_id ASC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.SessionID, &line.ProductID, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) AddQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	const q = `
INSERT INTO cart_lines (session_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	_, err := r.pool.Exec(ctx, q, sessionID, productID, quantity)
	return err
}

func (r *postgresRepo) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE session_id = $1 AND product_id = $2
`, sessionID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE session_id = $2 AND product_id = $3
`, quantity, sessionID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) Remove(ctx context.Context, sessionID, productID string) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM cart_lines
WHERE session_id = $1 AND product_id = $2
`, sessionID, productID)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE session_id = $1`, sessionID)
	return err
}
