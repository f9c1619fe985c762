package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"instant-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text AS id, store_id::text AS store_id, key, sku, name,
       COALESCE(description, '') AS description, price_cents, currency, is_virtual, attributes, created_at`

const selectProduct = `SELECT ` + productColumns + ` FROM products `

type productRow struct {
	ID          string                 `db:"id"`
	StoreID     string                 `db:"store_id"`
	Key         string                 `db:"key"`
	SKU         string                 `db:"sku"`
	Name        string                 `db:"name"`
	Description string                 `db:"description"`
	PriceCents  int64                  `db:"price_cents"`
	Currency    string                 `db:"currency"`
	Virtual     bool                   `db:"is_virtual"`
	Attributes  map[string]interface{} `db:"attributes"`
	CreatedAt   time.Time              `db:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product(r)
}

// ErrIDConflict is returned when an upsert names an id that differs from the
// product already stored under the same key.
var ErrIDConflict = errors.New("product id conflicts with existing key")

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, selectProduct+`WHERE store_id = $1 ORDER BY created_at DESC`, storeID)
	if err != nil {
		r.logger.Printf("product repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[productRow])
	if err != nil {
		r.logger.Printf("product repo: list rows store_id=%s error=%v", storeID, err)
		return nil, err
	}
	out := make([]domain.Product, len(collected))
	for i, row := range collected {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Product, error) {
	return r.getOne(ctx, "id", selectProduct+`WHERE store_id = $1 AND id = $2`, storeID, id)
}

// GetBySKU returns the oldest product carrying the sku; skus are not unique.
func (r *postgresRepo) GetBySKU(ctx context.Context, storeID, sku string) (*domain.Product, error) {
	return r.getOne(ctx, "sku", selectProduct+`WHERE store_id = $1 AND sku = $2 ORDER BY created_at ASC LIMIT 1`, storeID, sku)
}

func (r *postgresRepo) getOne(ctx context.Context, by, q, storeID, value string) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, storeID, value)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[productRow])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") {
			r.logger.Printf("product repo: get store_id=%s %s=%s not found", storeID, by, value)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get store_id=%s %s=%s error=%v", storeID, by, value, err)
		return nil, err
	}
	p := row.toDomain()
	return &p, nil
}

// Upsert writes the product keyed by (store, key). An empty ID lets the
// database assign one.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	attrs := product.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	rows, err := r.pool.Query(ctx, `
INSERT INTO products (id, store_id, key, sku, name, description, price_cents, currency, is_virtual, attributes)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
ON CONFLICT (store_id, key) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    is_virtual = EXCLUDED.is_virtual,
    attributes = EXCLUDED.attributes
RETURNING `+productColumns,
		product.ID,
		product.StoreID,
		product.Key,
		product.SKU,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.Virtual,
		attrs,
	)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[productRow])
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s store_id=%s error=%v", product.Key, product.StoreID, err)
		return nil, err
	}
	if product.ID != "" && row.ID != product.ID {
		return nil, fmt.Errorf("%w: key=%s existing_id=%s import_id=%s", ErrIDConflict, product.Key, row.ID, product.ID)
	}
	r.logger.Printf("product repo: upserted key=%s store_id=%s id=%s virtual=%t", row.Key, row.StoreID, row.ID, row.Virtual)
	out := row.toDomain()
	return &out, nil
}
