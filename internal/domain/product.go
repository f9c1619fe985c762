package domain

import "time"

type Product struct {
	ID          string                 `json:"id"`
	StoreID     string                 `json:"-"`
	Key         string                 `json:"key"`
	SKU         string                 `json:"sku"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	PriceCents  int64                  `json:"priceCents"`
	Currency    string                 `json:"currency"`
	Virtual     bool                   `json:"virtual"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// IsVirtual reports whether the product needs no shipping.
func (p Product) IsVirtual() bool {
	return p.Virtual
}
