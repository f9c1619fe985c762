package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"instant-checkout/internal/domain"
)

const issueAttempts = 5

// ErrExpired is returned by LookupAccess for a token past its expiry.
var ErrExpired = errors.New("token expired")

// Issue stores t under a fresh random value valid for ttl and returns the value.
func Issue(ctx context.Context, repo Repository, t Token, ttl time.Duration) (string, error) {
	t.ExpiresAt = time.Now().Add(ttl)
	for i := 0; i < issueAttempts; i++ {
		value, err := randomValue()
		if err != nil {
			return "", err
		}
		t.Token = value
		err = repo.Create(ctx, t)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return "", err
		}
	}
	return "", errors.New("token: no free value after retries")
}

// LookupAccess returns the access token stored under value. Expired tokens are
// deleted on sight.
func LookupAccess(ctx context.Context, repo Repository, value string) (*Token, error) {
	t, err := repo.Get(ctx, value)
	if err != nil {
		return nil, err
	}
	if t.Kind != KindAccess {
		return nil, domain.ErrNotFound
	}
	if time.Now().After(t.ExpiresAt) {
		_ = repo.Delete(ctx, value)
		return nil, ErrExpired
	}
	return t, nil
}

func randomValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
