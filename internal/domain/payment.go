package domain

// FreePaymentMethodCode is the zero-cost payment method used for free carts.
const FreePaymentMethodCode = "free"

// PaymentMethod is a configured way to pay for a cart.
type PaymentMethod struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	// Active disables the method everywhere when false.
	Active        bool   `json:"active"`
	MinTotalCents *int64 `json:"minTotalCents,omitempty"`
	MaxTotalCents *int64 `json:"maxTotalCents,omitempty"`
	SortOrder     int    `json:"sortOrder"`
}

// IsAvailable reports whether the method can pay for the given cart.
// The free method only applies to carts with items and a zero total; the
// other methods honour their configured total bounds.
func (m *PaymentMethod) IsAvailable(cart *Cart) bool {
	if m == nil || !m.Active || cart == nil {
		return false
	}
	if m.Code == FreePaymentMethodCode {
		return len(cart.Lines) > 0 && cart.TotalCents == 0
	}
	if m.MinTotalCents != nil && cart.TotalCents < *m.MinTotalCents {
		return false
	}
	if m.MaxTotalCents != nil && cart.TotalCents > *m.MaxTotalCents {
		return false
	}
	return true
}
