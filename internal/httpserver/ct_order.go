package httpserver

import (
	"strconv"
	"time"

	"instant-checkout/internal/domain"
)

type ctOrder struct {
	Type            string       `json:"type"`
	ID              string       `json:"id"`
	Version         int          `json:"version"`
	OrderNumber     string       `json:"orderNumber"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastModifiedAt  time.Time    `json:"lastModifiedAt"`
	CustomerID      string       `json:"customerId,omitempty"`
	CustomerEmail   string       `json:"customerEmail,omitempty"`
	Cart            *ctRef       `json:"cart,omitempty"`
	LineItems       []ctLineItem `json:"lineItems"`
	TotalPrice      ctPriceValue `json:"totalPrice"`
	OrderState      string       `json:"orderState"`
	PaymentMethod   string       `json:"paymentMethod,omitempty"`
	BillingAddress  *ctAddress   `json:"billingAddress,omitempty"`
	ShippingAddress *ctAddress   `json:"shippingAddress,omitempty"`
	Origin          string       `json:"origin"`
}

// orderStates maps stored order states to their API names.
var orderStates = map[string]string{
	domain.OrderStateNew: "Open",
}

func toCTOrder(o domain.Order) ctOrder {
	lineItems := make([]ctLineItem, 0, len(o.Lines))
	for i, line := range o.Lines {
		lineItems = append(lineItems, toCTLineItem(lineKey(o.ID, i), line.ProductID, line.Quantity, line.UnitPriceCents, line.TotalCents, line.Snapshot, o.Currency, o.CreatedAt))
	}
	state, ok := orderStates[o.State]
	if !ok {
		state = o.State
	}
	out := ctOrder{
		Type:            "Order",
		ID:              o.ID,
		Version:         1,
		OrderNumber:     o.IncrementID,
		CreatedAt:       o.CreatedAt,
		LastModifiedAt:  o.CreatedAt,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		LineItems:       lineItems,
		TotalPrice:      centPrice(o.Currency, o.TotalCents),
		OrderState:      state,
		PaymentMethod:   o.PaymentMethod,
		BillingAddress:  toCTCartAddress(o.BillingAddress),
		ShippingAddress: toCTCartAddress(o.ShippingAddress),
		Origin:          "Customer",
	}
	if o.CartID != "" {
		out.Cart = &ctRef{TypeID: "cart", ID: o.CartID}
	}
	return out
}

func lineKey(orderID string, i int) string {
	return orderID + "-" + strconv.Itoa(i+1)
}
