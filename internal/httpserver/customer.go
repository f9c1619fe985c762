package httpserver

import (
	"time"

	"instant-checkout/internal/domain"
)

type signupRequest struct {
	Email                  string           `json:"email"`
	Password               string           `json:"password"`
	FirstName              string           `json:"firstName"`
	LastName               string           `json:"lastName"`
	DateOfBirth            string           `json:"dateOfBirth"`
	Addresses              []addressRequest `json:"addresses"`
	DefaultShippingAddress *int             `json:"defaultShippingAddress"`
	DefaultBillingAddress  *int             `json:"defaultBillingAddress"`
}

type addressRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Country    string `json:"country"`
	StreetName string `json:"streetName"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type tokenRequest struct {
	GrantType string `form:"grant_type" binding:"required"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
	Scope     string `form:"scope" binding:"required"`
}

type customerResponse struct {
	Customer ctCustomer `json:"customer"`
}

type ctCustomer struct {
	ID                       string      `json:"id"`
	Version                  int         `json:"version"`
	CreatedAt                time.Time   `json:"createdAt"`
	LastModifiedAt           time.Time   `json:"lastModifiedAt"`
	CreatedBy                auditInfo   `json:"createdBy"`
	Email                    string      `json:"email"`
	FirstName                string      `json:"firstName,omitempty"`
	LastName                 string      `json:"lastName,omitempty"`
	DateOfBirth              string      `json:"dateOfBirth,omitempty"`
	Addresses                []ctAddress `json:"addresses"`
	DefaultShippingAddressID string      `json:"defaultShippingAddressId,omitempty"`
	DefaultBillingAddressID  string      `json:"defaultBillingAddressId,omitempty"`
	ShippingAddressIDs       []string    `json:"shippingAddressIds"`
	BillingAddressIDs        []string    `json:"billingAddressIds"`
	// CanCheckout reports whether an instant checkout of a physical product
	// would find both default addresses.
	CanCheckout        bool   `json:"canInstantCheckout"`
	AuthenticationMode string `json:"authenticationMode"`
}

type auditInfo struct {
	ClientID         string `json:"clientId"`
	IsPlatformClient bool   `json:"isPlatformClient"`
}

type ctAddress struct {
	ID         string `json:"id,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Country    string `json:"country,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

var auditDefaults = auditInfo{ClientID: "instant-checkout-api"}

func toCTCustomer(c domain.Customer) ctCustomer {
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	addresses := make([]ctAddress, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		addresses = append(addresses, ctAddress(a))
	}
	_, hasBilling := c.Address(c.DefaultBillingAddressID)
	_, hasShipping := c.Address(c.DefaultShippingAddressID)

	return ctCustomer{
		ID:                       c.ID,
		Version:                  1,
		CreatedAt:                created,
		LastModifiedAt:           created,
		CreatedBy:                auditDefaults,
		Email:                    c.Email,
		FirstName:                c.FirstName,
		LastName:                 c.LastName,
		DateOfBirth:              c.DateOfBirth,
		Addresses:                addresses,
		DefaultShippingAddressID: c.DefaultShippingAddressID,
		DefaultBillingAddressID:  c.DefaultBillingAddressID,
		ShippingAddressIDs:       orEmpty(c.ShippingAddressIDs),
		BillingAddressIDs:        orEmpty(c.BillingAddressIDs),
		CanCheckout:              hasBilling && hasShipping,
		AuthenticationMode:       "Password",
	}
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
