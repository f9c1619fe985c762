package anonymous

import (
	"context"
	"errors"
	"time"

	tokenrepo "instant-checkout/internal/repository/token"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues guest session tokens. A guest session has an anonymous id but
// no customer, so it can browse but never check out.
type Service struct {
	tokens     *tokenManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(repo tokenrepo.Repository) *Service {
	return &Service{
		tokens:     newTokenManager(repo),
		accessTTL:  3 * time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

func (s *Service) Issue(ctx context.Context, storeID string) (accessToken, refreshToken, anonymousID string, err error) {
	anonID := uuid.NewString()
	accessToken, err = s.tokens.Issue(ctx, storeID, anonID, tokenrepo.KindAccess, s.accessTTL)
	if err != nil {
		return "", "", "", err
	}
	refreshToken, err = s.tokens.Issue(ctx, storeID, anonID, tokenrepo.KindRefresh, s.refreshTTL)
	if err != nil {
		return "", "", "", err
	}
	return accessToken, refreshToken, anonID, nil
}

func (s *Service) LookupByToken(ctx context.Context, storeID, token string) (string, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok || meta.StoreID != storeID {
		return "", ErrInvalidToken
	}
	return meta.AnonymousID, nil
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}
