package customer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"instant-checkout/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id::text AS id, store_id::text AS store_id, email, password_hash, first_name, last_name,
       date_of_birth, addresses, default_shipping_address_id, default_billing_address_id, shipping_address_ids,
       billing_address_ids, created_at`

const selectCustomer = `SELECT ` + customerColumns + ` FROM customers `

// customerRow mirrors the customers table. Address lists are jsonb and decode directly.
type customerRow struct {
	ID                       string                   `db:"id"`
	StoreID                  string                   `db:"store_id"`
	Email                    string                   `db:"email"`
	PasswordHash             string                   `db:"password_hash"`
	FirstName                string                   `db:"first_name"`
	LastName                 string                   `db:"last_name"`
	DateOfBirth              string                   `db:"date_of_birth"`
	Addresses                []domain.CustomerAddress `db:"addresses"`
	DefaultShippingAddressID string                   `db:"default_shipping_address_id"`
	DefaultBillingAddressID  string                   `db:"default_billing_address_id"`
	ShippingAddressIDs       []string                 `db:"shipping_address_ids"`
	BillingAddressIDs        []string                 `db:"billing_address_ids"`
	CreatedAt                time.Time                `db:"created_at"`
}

func (r customerRow) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:                       r.ID,
		StoreID:                  r.StoreID,
		Email:                    r.Email,
		PasswordHash:             r.PasswordHash,
		FirstName:                r.FirstName,
		LastName:                 r.LastName,
		DateOfBirth:              r.DateOfBirth,
		Addresses:                r.Addresses,
		DefaultShippingAddressID: r.DefaultShippingAddressID,
		DefaultBillingAddressID:  r.DefaultBillingAddressID,
		ShippingAddressIDs:       r.ShippingAddressIDs,
		BillingAddressIDs:        r.BillingAddressIDs,
		CreatedAt:                r.CreatedAt,
	}
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create inserts the customer. Emails are stored lower-cased and are unique per store.
func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	rows, err := r.pool.Query(ctx, `
INSERT INTO customers (
    store_id, email, password_hash, first_name, last_name, date_of_birth, addresses,
    default_shipping_address_id, default_billing_address_id, shipping_address_ids, billing_address_ids
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+customerColumns,
		c.StoreID,
		strings.ToLower(c.Email),
		c.PasswordHash,
		c.FirstName,
		c.LastName,
		c.DateOfBirth,
		orEmpty(c.Addresses),
		c.DefaultShippingAddressID,
		c.DefaultBillingAddressID,
		orEmpty(c.ShippingAddressIDs),
		orEmpty(c.BillingAddressIDs),
	)
	if err != nil {
		return nil, r.translate("create", err)
	}
	created, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("customer repo: created id=%s store_id=%s", created.ID, created.StoreID)
	return created, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error) {
	rows, err := r.pool.Query(ctx, selectCustomer+`WHERE store_id = $1 AND lower(email) = lower($2)`, storeID, email)
	if err != nil {
		return nil, r.translate("get by email", err)
	}
	return r.collect(rows)
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Customer, error) {
	rows, err := r.pool.Query(ctx, selectCustomer+`WHERE store_id = $1 AND id = $2`, storeID, id)
	if err != nil {
		return nil, r.translate("get by id", err)
	}
	return r.collect(rows)
}

func (r *postgresRepo) collect(rows pgx.Rows) (*domain.Customer, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[customerRow])
	if err != nil {
		return nil, r.translate("collect", err)
	}
	return row.toDomain(), nil
}

// translate maps driver errors onto domain sentinels.
func (r *postgresRepo) translate(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrAlreadyExists
		case "22P02":
			// malformed uuid in the lookup key
			return domain.ErrNotFound
		}
	}
	r.logger.Printf("customer repo: %s error=%v", op, err)
	return err
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
