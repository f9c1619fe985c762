package store

import (
	"context"
	"errors"

	"instant-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Store, error) {
	const q = `
SELECT id::text, key, name, currency, created_at
FROM stores
WHERE key = $1
`
	var s domain.Store
	err := r.pool.QueryRow(ctx, q, key).Scan(&s.ID, &s.Key, &s.Name, &s.Currency, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Create(ctx context.Context, store domain.Store) (*domain.Store, error) {
	const q = `
INSERT INTO stores (key, name, currency)
VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'USD'))
RETURNING id::text, currency, created_at
`
	out := store
	err := r.pool.QueryRow(ctx, q, store.Key, store.Name, store.Currency).Scan(&out.ID, &out.Currency, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &out, nil
}
