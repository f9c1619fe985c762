package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrCustomerAlreadyAssigned is returned when a cart already belongs to another customer.
	ErrCustomerAlreadyAssigned = errors.New("cart is already assigned to another customer")
	// ErrCartInactive is returned when mutating or placing a closed cart.
	ErrCartInactive = errors.New("cart is not active")
	// ErrInvalidQuantity is returned for negative quantities and for quantities above MaxQuantity.
	ErrInvalidQuantity = errors.New("quantity is out of range")
	// ErrTotalOutOfRange is returned when a price is negative or a total would overflow.
	ErrTotalOutOfRange = errors.New("cart total is out of range")
	// ErrCurrencyMismatch is returned when a product is priced in a currency other than the cart's.
	ErrCurrencyMismatch = errors.New("product currency does not match cart currency")
	// ErrPaymentMethodUnavailable is returned when the requested payment method cannot pay for the cart.
	ErrPaymentMethodUnavailable = errors.New("the requested payment method is not available")
	// ErrNoDefaultAddress is returned when a customer has no default address of the requested kind.
	ErrNoDefaultAddress = errors.New("customer has no default address")
)
