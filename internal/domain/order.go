package domain

import "time"

// Order states.
const (
	OrderStateNew = "new"
)

// Order is the result of placing a cart.
type Order struct {
	ID              string      `json:"id"`
	StoreID         string      `json:"-"`
	IncrementID     string      `json:"orderNumber"`
	CartID          string      `json:"cartId"`
	CustomerID      string      `json:"customerId"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	State           string      `json:"state"`
	PaymentMethod   string      `json:"paymentMethod"`
	Currency        string      `json:"currency"`
	TotalCents      int64       `json:"totalCents"`
	BillingAddress  *Address    `json:"billingAddress,omitempty"`
	ShippingAddress *Address    `json:"shippingAddress,omitempty"`
	Lines           []OrderLine `json:"lineItems"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type OrderLine struct {
	ProductID      string                 `json:"productId"`
	Quantity       int                    `json:"quantity"`
	UnitPriceCents int64                  `json:"unitPriceCents"`
	TotalCents     int64                  `json:"totalCents"`
	Snapshot       map[string]interface{} `json:"snapshot,omitempty"`
}
