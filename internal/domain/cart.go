package domain

import (
	"math"
	"strings"
	"time"
)

type Cart struct {
	ID                string     `json:"id"`
	StoreID           string     `json:"-"`
	CustomerID        *string    `json:"customerId,omitempty"`
	CustomerEmail     string     `json:"customerEmail,omitempty"`
	CustomerFirstName string     `json:"customerFirstName,omitempty"`
	CustomerLastName  string     `json:"customerLastName,omitempty"`
	Currency          string     `json:"currency"`
	Active            bool       `json:"active"`
	BillingAddress    *Address   `json:"billingAddress,omitempty"`
	ShippingAddress   *Address   `json:"shippingAddress,omitempty"`
	PaymentMethod     string     `json:"paymentMethod,omitempty"`
	ReservedOrderID   *string    `json:"reservedOrderId,omitempty"`
	ItemsQty          int        `json:"itemsQty"`
	TotalCents        int64      `json:"totalCents"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	Lines             []CartLine `json:"lineItems,omitempty"`
}

type CartLine struct {
	ID             string                 `json:"id"`
	CartID         string                 `json:"cartId"`
	ProductID      string                 `json:"productId"`
	Quantity       int                    `json:"quantity"`
	UnitPriceCents int64                  `json:"unitPriceCents"`
	TotalCents     int64                  `json:"totalCents"`
	Virtual        bool                   `json:"virtual"`
	Options        map[string]string      `json:"options,omitempty"`
	Snapshot       map[string]interface{} `json:"snapshot,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// Address is a billing or shipping address attached to a cart or order.
type Address struct {
	CustomerID        string `json:"customerId,omitempty"`
	CustomerAddressID string `json:"customerAddressId,omitempty"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Email             string `json:"email,omitempty"`
	Country           string `json:"country,omitempty"`
	StreetName        string `json:"streetName,omitempty"`
	PostalCode        string `json:"postalCode,omitempty"`
	City              string `json:"city,omitempty"`
	Department        string `json:"department,omitempty"`
	// SkipValidation marks a stub address that only carries customer identity.
	SkipValidation bool `json:"skipValidation,omitempty"`
}

// ProductRequest carries optional parameters for adding a product to a cart.
type ProductRequest struct {
	Quantity int               `json:"quantity,omitempty"`
	Options  map[string]string `json:"options,omitempty"`
}

// NewCart returns an empty active cart bound to the store.
func NewCart(store Store) *Cart {
	return &Cart{
		StoreID:  store.ID,
		Currency: store.Currency,
		Active:   true,
	}
}

// HasIdentity reports whether the cart has been persisted at least once.
func (c *Cart) HasIdentity() bool {
	return c != nil && c.ID != ""
}

// AssignCustomer binds the customer to the cart. A cart keeps its first customer for life.
func (c *Cart) AssignCustomer(customer *Customer) error {
	if customer.IsGuest() {
		return ErrNotFound
	}
	if c.CustomerID != nil && *c.CustomerID != customer.ID {
		return ErrCustomerAlreadyAssigned
	}
	id := customer.ID
	c.CustomerID = &id
	c.CustomerEmail = customer.Email
	c.CustomerFirstName = customer.FirstName
	c.CustomerLastName = customer.LastName
	return nil
}

// ImportBillingAddress copies a stored customer address into the billing address.
func (c *Cart) ImportBillingAddress(a CustomerAddress) {
	c.BillingAddress = c.importAddress(a)
}

// ImportShippingAddress copies a stored customer address into the shipping address.
func (c *Cart) ImportShippingAddress(a CustomerAddress) {
	c.ShippingAddress = c.importAddress(a)
}

// SetBillingStub attaches a billing address that only identifies the customer.
// Orders viewed later still need a name and email on the billing address.
func (c *Cart) SetBillingStub() {
	stub := &Address{
		Email:          c.CustomerEmail,
		FirstName:      c.CustomerFirstName,
		LastName:       c.CustomerLastName,
		SkipValidation: true,
	}
	if c.CustomerID != nil {
		stub.CustomerID = *c.CustomerID
	}
	c.BillingAddress = stub
}

func (c *Cart) importAddress(a CustomerAddress) *Address {
	out := &Address{
		CustomerAddressID: a.ID,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Email:             a.Email,
		Country:           a.Country,
		StreetName:        a.StreetName,
		PostalCode:        a.PostalCode,
		City:              a.City,
		Department:        a.Department,
	}
	if c.CustomerID != nil {
		out.CustomerID = *c.CustomerID
	}
	if out.Email == "" {
		out.Email = c.CustomerEmail
	}
	return out
}

// MaxQuantity bounds a line quantity and the cart item count. Both are stored
// as 32-bit integers.
const MaxQuantity = math.MaxInt32

// AddProduct adds the product to the cart, merging with an existing line for the
// same product and options, and recomputes totals. The cart is left unchanged
// when the result would not fit the quantity or money bounds.
func (c *Cart) AddProduct(p Product, req *ProductRequest) error {
	if !c.Active {
		return ErrCartInactive
	}
	qty := 1
	var options map[string]string
	if req != nil {
		if req.Quantity < 0 || req.Quantity > MaxQuantity {
			return ErrInvalidQuantity
		}
		if req.Quantity > 0 {
			qty = req.Quantity
		}
		options = req.Options
	}
	if p.PriceCents < 0 {
		return ErrTotalOutOfRange
	}
	currency := c.Currency
	if currency == "" {
		currency = p.Currency
	} else if p.Currency != "" && !strings.EqualFold(p.Currency, currency) {
		return ErrCurrencyMismatch
	}

	lines := append([]CartLine(nil), c.Lines...)
	merged := false
	for i := range lines {
		if lines[i].ProductID == p.ID && sameOptions(lines[i].Options, options) {
			lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, CartLine{
			CartID:         c.ID,
			ProductID:      p.ID,
			Quantity:       qty,
			UnitPriceCents: p.PriceCents,
			Virtual:        p.IsVirtual(),
			Options:        copyOptions(options),
			Snapshot:       ProductSnapshot(p),
		})
	}

	total, items, err := sumLines(lines)
	if err != nil {
		return err
	}
	c.Currency = currency
	c.Lines = lines
	c.TotalCents = total
	c.ItemsQty = items
	return nil
}

// CollectTotals recomputes line and cart totals.
func (c *Cart) CollectTotals() error {
	total, items, err := sumLines(c.Lines)
	if err != nil {
		return err
	}
	c.TotalCents = total
	c.ItemsQty = items
	return nil
}

// sumLines fills in each line total and returns the cart total and item count.
func sumLines(lines []CartLine) (int64, int, error) {
	var total int64
	items := 0
	for i := range lines {
		l := &lines[i]
		if l.Quantity < 0 || l.Quantity > MaxQuantity || items > MaxQuantity-l.Quantity {
			return 0, 0, ErrInvalidQuantity
		}
		if l.UnitPriceCents < 0 || (l.Quantity > 0 && l.UnitPriceCents > math.MaxInt64/int64(l.Quantity)) {
			return 0, 0, ErrTotalOutOfRange
		}
		l.TotalCents = l.UnitPriceCents * int64(l.Quantity)
		if total > math.MaxInt64-l.TotalCents {
			return 0, 0, ErrTotalOutOfRange
		}
		total += l.TotalCents
		items += l.Quantity
	}
	return total, items, nil
}

func copyOptions(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// IsVirtual reports whether every line is a virtual product.
func (c *Cart) IsVirtual() bool {
	if len(c.Lines) == 0 {
		return false
	}
	for _, l := range c.Lines {
		if !l.Virtual {
			return false
		}
	}
	return true
}

// Close deactivates the cart and records the order id reserved for it.
func (c *Cart) Close(reservedOrderID string) {
	c.Active = false
	c.ReservedOrderID = &reservedOrderID
}

// ProductSnapshot captures the product fields rendered for a line after the product changes.
func ProductSnapshot(p Product) map[string]interface{} {
	slug := strings.TrimSpace(p.Key)
	if slug == "" {
		slug = strings.ReplaceAll(strings.ToLower(p.Name), " ", "-")
	}
	snap := map[string]interface{}{
		"productKey":  p.Key,
		"productName": p.Name,
		"sku":         p.SKU,
		"productSlug": slug,
		"priceCents":  p.PriceCents,
		"currency":    p.Currency,
	}
	if len(p.Attributes) > 0 {
		if images, ok := p.Attributes["images"]; ok {
			snap["images"] = images
		}
	}
	return snap
}

func sameOptions(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if other, ok := b[k]; !ok || other != v {
			return false
		}
	}
	return true
}
