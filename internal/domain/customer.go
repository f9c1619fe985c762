package domain

import "time"

// CustomerAddress stores address fields returned to clients.
type CustomerAddress struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Country    string `json:"country,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

// Customer represents a registered user tied to a store.
type Customer struct {
	ID                       string            `json:"id"`
	StoreID                  string            `json:"storeId"`
	Email                    string            `json:"email"`
	PasswordHash             string            `json:"-"`
	FirstName                string            `json:"firstName,omitempty"`
	LastName                 string            `json:"lastName,omitempty"`
	DateOfBirth              string            `json:"dateOfBirth,omitempty"`
	Addresses                []CustomerAddress `json:"addresses,omitempty"`
	DefaultShippingAddressID string            `json:"defaultShippingAddressId,omitempty"`
	DefaultBillingAddressID  string            `json:"defaultBillingAddressId,omitempty"`
	ShippingAddressIDs       []string          `json:"shippingAddressIds,omitempty"`
	BillingAddressIDs        []string          `json:"billingAddressIds,omitempty"`
	CreatedAt                time.Time         `json:"createdAt"`
}

// IsGuest reports whether the customer has no persisted identity.
func (c *Customer) IsGuest() bool {
	return c == nil || c.ID == ""
}

// Address returns the stored address with the given id.
func (c *Customer) Address(id string) (CustomerAddress, bool) {
	if c == nil || id == "" {
		return CustomerAddress{}, false
	}
	for _, a := range c.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return CustomerAddress{}, false
}
