package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"instant-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCartNotPlaceable is returned when the cart vanished or was deactivated
// between validation and the order write.
var ErrCartNotPlaceable = errors.New("cart is no longer active")

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

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET is_active = false, reserved_order_id = $3, updated_at = now()
WHERE id = $1 AND store_id = $2 AND is_active
`, o.CartID, o.StoreID, o.IncrementID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCartNotPlaceable
	}

	err = tx.QueryRow(ctx, `
INSERT INTO orders (
    store_id, increment_id, cart_id, customer_id, customer_email, state, payment_method,
    currency, total_cents, billing_address, shipping_address
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id::text, created_at
`,
		o.StoreID,
		o.IncrementID,
		o.CartID,
		o.CustomerID,
		o.CustomerEmail,
		o.State,
		o.PaymentMethod,
		o.Currency,
		o.TotalCents,
		o.BillingAddress,
		o.ShippingAddress,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}

	for i, line := range o.Lines {
		_, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, position, product_id, quantity, unit_price_cents, total_cents, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, o.ID, i, line.ProductID, line.Quantity, line.UnitPriceCents, line.TotalCents, line.Snapshot)
		if err != nil {
			return fmt.Errorf("insert order line %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("order repo: created id=%s increment_id=%s cart_id=%s lines=%d", o.ID, o.IncrementID, o.CartID, len(o.Lines))
	return nil
}

func (r *postgresRepo) GetByIncrementID(ctx context.Context, storeID, incrementID string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
SELECT id::text, store_id::text, increment_id, cart_id::text, customer_id::text, customer_email, state,
       payment_method, currency, total_cents, billing_address, shipping_address, created_at
FROM orders
WHERE store_id = $1 AND increment_id = $2
`, storeID, incrementID).Scan(
		&o.ID,
		&o.StoreID,
		&o.IncrementID,
		&o.CartID,
		&o.CustomerID,
		&o.CustomerEmail,
		&o.State,
		&o.PaymentMethod,
		&o.Currency,
		&o.TotalCents,
		&o.BillingAddress,
		&o.ShippingAddress,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT product_id::text, quantity, unit_price_cents, total_cents, snapshot
FROM order_lines
WHERE order_id = $1
ORDER BY position ASC
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPriceCents, &line.TotalCents, &line.Snapshot); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// ReserveOrderID draws the next order number. Numbers are global across stores.
func (r *postgresRepo) ReserveOrderID(ctx context.Context, storeID string) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('order_increment_seq')`).Scan(&n); err != nil {
		r.logger.Printf("order repo: reserve id store_id=%s error=%v", storeID, err)
		return "", err
	}
	id := FormatIncrementID(n)
	r.logger.Printf("order repo: reserved increment_id=%s store_id=%s", id, storeID)
	return id, nil
}

// FormatIncrementID renders an order sequence number the way customers see it.
func FormatIncrementID(n int64) string {
	return fmt.Sprintf("%09d", n)
}
