package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"instant-checkout/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AddressInput mirrors incoming address payloads.
type AddressInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Country    string `json:"country"`
	StreetName string `json:"streetName"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// SignupInput captures fields expected by the signup endpoint. Default
// addresses are indexes into Addresses and fall back to the first address.
type SignupInput struct {
	Email                  string         `json:"email"`
	Password               string         `json:"password"`
	FirstName              string         `json:"firstName"`
	LastName               string         `json:"lastName"`
	DateOfBirth            string         `json:"dateOfBirth"`
	Addresses              []AddressInput `json:"addresses"`
	DefaultShippingAddress *int           `json:"defaultShippingAddress"`
	DefaultBillingAddress  *int           `json:"defaultBillingAddress"`
}

// Signup registers a new customer within the given store.
func (s *Service) Signup(ctx context.Context, storeID string, in SignupInput) (*domain.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, errors.New("email required")
	}
	password := strings.TrimSpace(in.Password)
	if err := s.policy.check(password); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	c := domain.Customer{
		StoreID:      storeID,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DateOfBirth:  in.DateOfBirth,
		Addresses:    make([]domain.CustomerAddress, len(in.Addresses)),
	}
	for i, a := range in.Addresses {
		c.Addresses[i] = domain.CustomerAddress{
			ID:         uuid.NewString(),
			FirstName:  a.FirstName,
			LastName:   a.LastName,
			Country:    a.Country,
			StreetName: a.StreetName,
			PostalCode: a.PostalCode,
			City:       a.City,
			Email:      a.Email,
			Department: a.Department,
		}
	}
	if id := pickDefault(c.Addresses, in.DefaultShippingAddress); id != "" {
		c.DefaultShippingAddressID = id
		c.ShippingAddressIDs = []string{id}
	}
	if id := pickDefault(c.Addresses, in.DefaultBillingAddress); id != "" {
		c.DefaultBillingAddressID = id
		c.BillingAddressIDs = []string{id}
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("customer: signed up store_id=%s customer_id=%s addresses=%d", storeID, created.ID, len(created.Addresses))
	return created, nil
}

// pickDefault resolves an address index, using the first address when the
// index is absent or out of range.
func pickDefault(addresses []domain.CustomerAddress, idx *int) string {
	if len(addresses) == 0 {
		return ""
	}
	if idx != nil && *idx >= 0 && *idx < len(addresses) {
		return addresses[*idx].ID
	}
	return addresses[0].ID
}

type passwordPolicy struct {
	minLen int
}

func (p passwordPolicy) check(password string) error {
	if len(password) < p.minLen {
		return fmt.Errorf("password must be at least %d characters", p.minLen)
	}
	var upper, lower, digit bool
	for _, r := range password {
		upper = upper || unicode.IsUpper(r)
		lower = lower || unicode.IsLower(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !upper || !lower || !digit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
