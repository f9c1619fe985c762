package customer

import (
	"context"
	"time"

	tokenrepo "instant-checkout/internal/repository/token"
)

type tokenMeta struct {
	CustomerID string
	StoreID    string
	ExpiresAt  time.Time
}

// tokenManager issues and checks the bearer tokens of registered customers.
type tokenManager struct {
	repo tokenrepo.Repository
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo}
}

func (m *tokenManager) Issue(ctx context.Context, storeID, customerID, kind string, ttl time.Duration) (string, error) {
	return tokenrepo.Issue(ctx, m.repo, tokenrepo.Token{
		StoreID:    storeID,
		CustomerID: &customerID,
		Kind:       kind,
	}, ttl)
}

// Validate accepts unexpired access tokens that belong to a customer. Guest
// session tokens carry no customer and are refused.
func (m *tokenManager) Validate(ctx context.Context, token string) (tokenMeta, bool) {
	t, err := tokenrepo.LookupAccess(ctx, m.repo, token)
	if err != nil || t.CustomerID == nil {
		return tokenMeta{}, false
	}
	return tokenMeta{CustomerID: *t.CustomerID, StoreID: t.StoreID, ExpiresAt: t.ExpiresAt}, true
}
