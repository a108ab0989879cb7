package draft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/migrate"
	_ "modernc.org/sqlite"
)

// SQLiteRepo is a file-backed Repository for single-node deployments.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the draft migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate.ApplySQLite(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM checkout_drafts WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (r *SQLiteRepo) Put(ctx context.Context, key string, payload []byte) error {
	const q = `
INSERT INTO checkout_drafts (key, payload, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE
SET payload = excluded.payload,
    updated_at = excluded.updated_at
`
	_, err := r.db.ExecContext(ctx, q, key, string(payload))
	return err
}

func (r *SQLiteRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkout_drafts WHERE key = ?`, key)
	return err
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}
