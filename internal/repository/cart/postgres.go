package cart

import (
	"context"
	"errors"

	"instant-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cartColumns = `id::text, store_id::text, customer_id::text, customer_email, customer_first_name, customer_last_name,
       currency, is_active, billing_address, shipping_address, payment_method, reserved_order_id,
       items_qty, total_cents, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// New builds an unsaved cart; nothing is written until Save.
func (r *postgresRepo) New(store domain.Store) *domain.Cart {
	return domain.NewCart(store)
}

// Save writes the cart and its lines in one transaction. A cart that fails its
// first save keeps an empty ID.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if cart.ID == "" {
		defer func() {
			if err != nil {
				cart.ID = ""
			}
		}()
		err = tx.QueryRow(ctx, `
INSERT INTO carts (
    store_id, customer_id, customer_email, customer_first_name, customer_last_name, currency, is_active,
    billing_address, shipping_address, payment_method, reserved_order_id, items_qty, total_cents
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id::text, created_at, updated_at
`,
			cart.StoreID,
			cart.CustomerID,
			cart.CustomerEmail,
			cart.CustomerFirstName,
			cart.CustomerLastName,
			cart.Currency,
			cart.Active,
			cart.BillingAddress,
			cart.ShippingAddress,
			cart.PaymentMethod,
			cart.ReservedOrderID,
			cart.ItemsQty,
			cart.TotalCents,
		).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
		if err != nil {
			return err
		}
	} else {
		err = tx.QueryRow(ctx, `
UPDATE carts
SET customer_id = $2,
    customer_email = $3,
    customer_first_name = $4,
    customer_last_name = $5,
    currency = $6,
    is_active = $7,
    billing_address = $8,
    shipping_address = $9,
    payment_method = $10,
    reserved_order_id = $11,
    items_qty = $12,
    total_cents = $13,
    updated_at = now()
WHERE id = $1
RETURNING updated_at
`,
			cart.ID,
			cart.CustomerID,
			cart.CustomerEmail,
			cart.CustomerFirstName,
			cart.CustomerLastName,
			cart.Currency,
			cart.Active,
			cart.BillingAddress,
			cart.ShippingAddress,
			cart.PaymentMethod,
			cart.ReservedOrderID,
			cart.ItemsQty,
			cart.TotalCents,
		).Scan(&cart.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
	}

	if err := replaceLines(ctx, tx, cart); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `
SELECT `+cartColumns+`
FROM carts
WHERE store_id = $1 AND id = $2
`, storeID, id)
}

func (r *postgresRepo) GetActiveByCustomer(ctx context.Context, storeID, customerID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `
SELECT `+cartColumns+`
FROM carts
WHERE store_id = $1 AND customer_id = $2 AND is_active
ORDER BY created_at DESC
LIMIT 1
`, storeID, customerID)
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.StoreID,
		&cart.CustomerID,
		&cart.CustomerEmail,
		&cart.CustomerFirstName,
		&cart.CustomerLastName,
		&cart.Currency,
		&cart.Active,
		&cart.BillingAddress,
		&cart.ShippingAddress,
		&cart.PaymentMethod,
		&cart.ReservedOrderID,
		&cart.ItemsQty,
		&cart.TotalCents,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, cart_id::text, product_id::text, quantity, unit_price_cents, total_cents, is_virtual, options, snapshot, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.TotalCents,
			&line.Virtual,
			&line.Options,
			&line.Snapshot,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

// replaceLines rewrites the cart's lines; totals are computed by the domain before saving.
func replaceLines(ctx context.Context, tx pgx.Tx, cart *domain.Cart) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}
	for i := range cart.Lines {
		line := &cart.Lines[i]
		line.CartID = cart.ID
		err := tx.QueryRow(ctx, `
INSERT INTO cart_lines (cart_id, position, product_id, quantity, unit_price_cents, total_cents, is_virtual, options, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'::jsonb), $9)
RETURNING id::text, created_at
`,
			cart.ID,
			i,
			line.ProductID,
			line.Quantity,
			line.UnitPriceCents,
			line.TotalCents,
			line.Virtual,
			line.Options,
			line.Snapshot,
		).Scan(&line.ID, &line.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
