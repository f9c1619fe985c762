package payment

import (
	"context"
	"errors"

	"instant-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const methodColumns = `code, title, is_active, min_total_cents, max_total_cents, sort_order`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, storeID, code string) (*domain.PaymentMethod, error) {
	const q = `
SELECT ` + methodColumns + `
FROM payment_methods
WHERE store_id = $1 AND code = $2
`
	m, err := scanMethod(r.pool.QueryRow(ctx, q, storeID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) List(ctx context.Context, storeID string) ([]domain.PaymentMethod, error) {
	const q = `
SELECT ` + methodColumns + `
FROM payment_methods
WHERE store_id = $1
ORDER BY sort_order ASC, code ASC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, storeID string, m domain.PaymentMethod) error {
	const q = `
INSERT INTO payment_methods (store_id, code, title, is_active, min_total_cents, max_total_cents, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (store_id, code) DO UPDATE SET
    title = EXCLUDED.title,
    is_active = EXCLUDED.is_active,
    min_total_cents = EXCLUDED.min_total_cents,
    max_total_cents = EXCLUDED.max_total_cents,
    sort_order = EXCLUDED.sort_order
`
	_, err := r.pool.Exec(ctx, q, storeID, m.Code, m.Title, m.Active, m.MinTotalCents, m.MaxTotalCents, m.SortOrder)
	return err
}

func scanMethod(row pgx.Row) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	if err := row.Scan(&m.Code, &m.Title, &m.Active, &m.MinTotalCents, &m.MaxTotalCents, &m.SortOrder); err != nil {
		return nil, err
	}
	return &m, nil
}
