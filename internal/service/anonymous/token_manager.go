package anonymous

import (
	"context"
	"time"

	tokenrepo "instant-checkout/internal/repository/token"
)

type tokenMeta struct {
	AnonymousID string
	StoreID     string
}

type tokenManager struct {
	repo tokenrepo.Repository
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo}
}

func (m *tokenManager) Issue(ctx context.Context, storeID, anonymousID, kind string, ttl time.Duration) (string, error) {
	return tokenrepo.Issue(ctx, m.repo, tokenrepo.Token{
		StoreID:     storeID,
		AnonymousID: &anonymousID,
		Kind:        kind,
	}, ttl)
}

func (m *tokenManager) Validate(ctx context.Context, token string) (tokenMeta, bool) {
	t, err := tokenrepo.LookupAccess(ctx, m.repo, token)
	if err != nil || t.AnonymousID == nil {
		return tokenMeta{}, false
	}
	return tokenMeta{AnonymousID: *t.AnonymousID, StoreID: t.StoreID}, true
}
