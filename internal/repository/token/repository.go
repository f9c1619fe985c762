package token

import (
	"context"
	"time"
)

// Token kinds.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Token is an issued bearer token. Customer tokens carry CustomerID, guest
// session tokens carry AnonymousID.
type Token struct {
	Token       string    `db:"token"`
	StoreID     string    `db:"store_id"`
	CustomerID  *string   `db:"customer_id"`
	AnonymousID *string   `db:"anonymous_id"`
	Kind        string    `db:"kind"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes tokens that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
