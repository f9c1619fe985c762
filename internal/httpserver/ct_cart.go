package httpserver

import (
	"strings"
	"time"

	"instant-checkout/internal/domain"
)

type ctCart struct {
	Type                  string       `json:"type"`
	ID                    string       `json:"id"`
	Version               int          `json:"version"`
	CreatedAt             time.Time    `json:"createdAt"`
	LastModifiedAt        time.Time    `json:"lastModifiedAt"`
	CreatedBy             *ctActor     `json:"createdBy,omitempty"`
	CustomerID            string       `json:"customerId,omitempty"`
	CustomerEmail         string       `json:"customerEmail,omitempty"`
	LineItems             []ctLineItem `json:"lineItems"`
	CartState             string       `json:"cartState"`
	TotalPrice            ctPriceValue `json:"totalPrice"`
	TotalLineItemQuantity int          `json:"totalLineItemQuantity,omitempty"`
	ShippingMode          string       `json:"shippingMode"`
	BillingAddress        *ctAddress   `json:"billingAddress,omitempty"`
	ShippingAddress       *ctAddress   `json:"shippingAddress,omitempty"`
	PaymentMethod         string       `json:"paymentMethod,omitempty"`
	ReservedOrderID       string       `json:"reservedOrderId,omitempty"`
	Origin                string       `json:"origin"`
}

type ctActor struct {
	ClientID string `json:"clientId,omitempty"`
	Customer *ctRef `json:"customer,omitempty"`
}

type ctLineItem struct {
	ID          string            `json:"id"`
	ProductID   string            `json:"productId"`
	ProductKey  string            `json:"productKey,omitempty"`
	ProductSlug map[string]string `json:"productSlug,omitempty"`
	Name        map[string]string `json:"name"`
	Variant     ctVariant         `json:"variant"`
	Price       ctPrice           `json:"price"`
	Quantity    int               `json:"quantity"`
	AddedAt     time.Time         `json:"addedAt"`
	TotalPrice  ctPriceValue      `json:"totalPrice"`
	// Virtual lines need no shipping address.
	Virtual bool `json:"virtual"`
}

type cartLineSnapshot struct {
	ProductKey  string
	ProductName string
	SKU         string
	ProductSlug string
	Currency    string
	Images      []string
}

func toCTCart(cart domain.Cart) ctCart {
	customerID := ""
	if cart.CustomerID != nil {
		customerID = *cart.CustomerID
	}

	lineItems := make([]ctLineItem, 0, len(cart.Lines))
	totalQty := 0
	for _, line := range cart.Lines {
		item := toCTLineItem(line.ID, line.ProductID, line.Quantity, line.UnitPriceCents, line.TotalCents, line.Snapshot, cart.Currency, line.CreatedAt)
		item.Virtual = line.Virtual
		lineItems = append(lineItems, item)
		totalQty += line.Quantity
	}

	out := ctCart{
		Type:            "Cart",
		ID:              cart.ID,
		Version:         1,
		CreatedAt:       cart.CreatedAt,
		LastModifiedAt:  cart.UpdatedAt,
		CreatedBy:       buildActor(customerID),
		CustomerID:      customerID,
		CustomerEmail:   cart.CustomerEmail,
		LineItems:       lineItems,
		CartState:       cartState(cart),
		TotalPrice:      centPrice(cart.Currency, cart.TotalCents),
		ShippingMode:    "Single",
		BillingAddress:  toCTCartAddress(cart.BillingAddress),
		ShippingAddress: toCTCartAddress(cart.ShippingAddress),
		PaymentMethod:   cart.PaymentMethod,
		Origin:          "Customer",
	}
	if cart.ReservedOrderID != nil {
		out.ReservedOrderID = *cart.ReservedOrderID
	}
	if totalQty > 0 {
		out.TotalLineItemQuantity = totalQty
	}
	return out
}

// cartState reports closed carts that carry an order number as Ordered and
// other inactive carts as Frozen.
func cartState(cart domain.Cart) string {
	switch {
	case cart.Active:
		return "Active"
	case cart.ReservedOrderID != nil:
		return "Ordered"
	default:
		return "Frozen"
	}
}

func toCTLineItem(id, productID string, qty int, unitCents, totalCents int64, snapshot map[string]interface{}, cartCurrency string, addedAt time.Time) ctLineItem {
	snap := parseLineSnapshot(snapshot)
	name := snap.ProductName
	if name == "" {
		name = snap.ProductKey
	}
	if name == "" {
		name = productID
	}
	slug := snap.ProductSlug
	if slug == "" {
		slug = snap.ProductKey
	}
	currency := snap.Currency
	if currency == "" {
		currency = cartCurrency
	}

	variant := ctVariant{
		ID:         1,
		SKU:        snap.SKU,
		Prices:     []ctPrice{{Value: centPrice(currency, unitCents)}},
		Images:     imagesFromURLs(snap.Images),
		Assets:     []interface{}{},
		Attributes: []interface{}{},
	}

	var productSlug map[string]string
	if slug != "" {
		productSlug = map[string]string{"en": slug}
	}

	return ctLineItem{
		ID:          id,
		ProductID:   productID,
		ProductKey:  snap.ProductKey,
		ProductSlug: productSlug,
		Name:        map[string]string{"en": name},
		Variant:     variant,
		Price:       ctPrice{Value: centPrice(currency, unitCents)},
		Quantity:    qty,
		AddedAt:     addedAt,
		TotalPrice:  centPrice(currency, totalCents),
	}
}

func centPrice(currency string, cents int64) ctPriceValue {
	return ctPriceValue{
		Type:           "centPrecision",
		CurrencyCode:   currency,
		CentAmount:     cents,
		FractionDigits: 2,
	}
}

func toCTCartAddress(a *domain.Address) *ctAddress {
	if a == nil {
		return nil
	}
	return &ctAddress{
		ID:         a.CustomerAddressID,
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

func buildActor(customerID string) *ctActor {
	if customerID == "" {
		return nil
	}
	return &ctActor{
		ClientID: auditDefaults.ClientID,
		Customer: &ctRef{TypeID: "customer", ID: customerID},
	}
}

// parseLineSnapshot reads the product fields stored on a line when it was added.
func parseLineSnapshot(raw map[string]interface{}) cartLineSnapshot {
	str := func(key string) string {
		v, _ := raw[key].(string)
		return v
	}
	return cartLineSnapshot{
		ProductKey:  str("productKey"),
		ProductName: str("productName"),
		SKU:         str("sku"),
		ProductSlug: str("productSlug"),
		Currency:    str("currency"),
		Images:      parseImageList(raw["images"]),
	}
}

func parseImageList(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func imagesFromURLs(urls []string) []ctImage {
	images := []ctImage{}
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, ctImage{URL: u})
		}
	}
	return images
}
