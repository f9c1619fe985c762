package customer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"instant-checkout/internal/domain"
	custrepo "instant-checkout/internal/repository/customer"
	tokenrepo "instant-checkout/internal/repository/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service owns registered customers: signup, password login, bearer token
// lookup and the default addresses used at checkout.
type Service struct {
	repo       custrepo.Repository
	tokens     *tokenManager
	accessTTL  time.Duration
	refreshTTL time.Duration
	policy     passwordPolicy
	logger     *log.Logger
}

type Option func(*Service)

func WithAccessTTL(d time.Duration) Option {
	return func(s *Service) { s.accessTTL = d }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(repo custrepo.Repository, tokens tokenrepo.Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		tokens:     newTokenManager(tokens),
		accessTTL:  48 * time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
		policy:     passwordPolicy{minLen: 8},
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is the result of a successful login.
type Session struct {
	Customer     *domain.Customer
	AccessToken  string
	RefreshToken string
}

// Login checks the password and issues an access/refresh token pair. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, storeID, email, password string) (*Session, error) {
	c, err := s.repo.GetByEmail(ctx, storeID, strings.TrimSpace(email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(strings.TrimSpace(password))) != nil {
		s.logger.Printf("customer: login rejected store_id=%s customer_id=%s", storeID, c.ID)
		return nil, ErrInvalidCredentials
	}

	sess := &Session{Customer: c}
	if sess.AccessToken, err = s.tokens.Issue(ctx, c.StoreID, c.ID, tokenrepo.KindAccess, s.accessTTL); err != nil {
		return nil, err
	}
	if sess.RefreshToken, err = s.tokens.Issue(ctx, c.StoreID, c.ID, tokenrepo.KindRefresh, s.refreshTTL); err != nil {
		return nil, err
	}
	return sess, nil
}

// LookupByToken returns the customer bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, storeID, token string) (*domain.Customer, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok || meta.StoreID != storeID {
		return nil, ErrInvalidToken
	}
	c, err := s.repo.GetByID(ctx, storeID, meta.CustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return c, err
}

func (s *Service) GetByID(ctx context.Context, storeID, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, storeID, id)
}

func (s *Service) GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error) {
	return s.repo.GetByEmail(ctx, storeID, strings.TrimSpace(email))
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}
