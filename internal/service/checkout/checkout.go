package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"instant-checkout/internal/domain"
)

// Step names reported in errors, logs and metrics.
const (
	StepAssignCustomer  = "assign_customer"
	StepBillingAddress  = "billing_address"
	StepShippingAddress = "shipping_address"
	StepAddProduct      = "add_product"
	StepPaymentMethod   = "payment_method"
	StepPlaceOrder      = "place_order"
	StepCloseCart       = "close_cart"
)

// CartStore creates carts and persists them. Save assigns an ID on first write.
type CartStore interface {
	New(store domain.Store) *domain.Cart
	Save(ctx context.Context, cart *domain.Cart) error
}

type CustomerDirectory interface {
	DefaultBillingAddress(ctx context.Context, customer *domain.Customer) (*domain.CustomerAddress, error)
	DefaultShippingAddress(ctx context.Context, customer *domain.Customer) (*domain.CustomerAddress, error)
}

type PaymentCatalog interface {
	Resolve(ctx context.Context, storeID, code string) (*domain.PaymentMethod, error)
}

// OrderPlacer converts a prepared cart into an order. Notifying the customer is its concern.
type OrderPlacer interface {
	Place(ctx context.Context, cart *domain.Cart) (*domain.Order, error)
}

type OrderIDReserver interface {
	ReserveOrderID(ctx context.Context, storeID string) (string, error)
}

// Recorder observes finished runs.
type Recorder interface {
	ObserveCheckout(outcome, step string, elapsed time.Duration)
	ObserveRollback(ok bool)
}

// Deps are the collaborators shared by every run.
type Deps struct {
	Carts     CartStore
	Customers CustomerDirectory
	Payments  PaymentCatalog
	Orders    OrderPlacer
	OrderIDs  OrderIDReserver
	Metrics   Recorder
	Logger    *log.Logger
}

// Session carries the customer of the caller's session, if any.
type Session struct {
	Customer *domain.Customer
}

// Request is the input of a single instant checkout.
type Request struct {
	PaymentMethod string
	Product       domain.Product
	// Customer takes precedence over the session customer.
	Customer              *domain.Customer
	Session               *Session
	ProductRequest        *domain.ProductRequest
	SkipBillingValidation bool
	ForcePlace            bool
}

// Result describes a successful run.
type Result struct {
	Cart      *domain.Cart
	Order     *domain.Order
	Decision  Decision
	FreeQuote bool
}

// Checkout runs one instant checkout and owns the cart of that run.
type Checkout struct {
	deps  Deps
	store domain.Store
	cart  *domain.Cart
}

// New builds a Checkout bound to the store. A Checkout is not reusable across runs.
func New(deps Deps, store domain.Store) *Checkout {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	return &Checkout{deps: deps, store: store}
}

// Cart returns the run's cart, creating it on first access.
func (c *Checkout) Cart() *domain.Cart {
	if c.cart == nil {
		c.cart = c.deps.Carts.New(c.store)
	}
	return c.cart
}

// Execute runs the fixed checkout sequence. On failure a cart that was already
// persisted is deactivated before the error is returned.
func (c *Checkout) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, step, err := c.run(ctx, req)
	if err != nil {
		failure := &Error{Step: step, Err: err}
		if c.cart.HasIdentity() {
			failure.RollbackErr = c.rollback(ctx)
		}
		c.deps.Logger.Printf("checkout: failed store=%s step=%s cart=%s err=%v", c.store.Key, step, cartID(c.cart), err)
		c.observe("failed", step, start)
		return nil, failure
	}
	c.deps.Logger.Printf("checkout: done store=%s cart=%s decision=%s free=%t", c.store.Key, res.Cart.ID, res.Decision, res.FreeQuote)
	c.observe(res.Decision.String(), "", start)
	return res, nil
}

func (c *Checkout) run(ctx context.Context, req Request) (*Result, string, error) {
	customer, err := c.assignCustomer(req)
	if err != nil {
		return nil, StepAssignCustomer, err
	}
	if err := c.initBillingAddress(ctx, customer, req.SkipBillingValidation); err != nil {
		return nil, StepBillingAddress, err
	}
	if !req.Product.IsVirtual() {
		if err := c.initShippingAddress(ctx, customer); err != nil {
			return nil, StepShippingAddress, err
		}
	}
	if err := c.addProduct(ctx, req.Product, req.ProductRequest); err != nil {
		return nil, StepAddProduct, err
	}
	free, err := c.initPaymentMethod(ctx, req.PaymentMethod)
	if err != nil {
		return nil, StepPaymentMethod, err
	}

	res := &Result{Cart: c.Cart(), FreeQuote: free, Decision: DecidePlacement(free, req.ForcePlace)}
	switch res.Decision {
	case DecisionPlace:
		order, err := c.deps.Orders.Place(ctx, c.Cart())
		if err != nil {
			return nil, StepPlaceOrder, &PlacementError{Err: err}
		}
		res.Order = order
	default:
		if err := c.closeCart(ctx); err != nil {
			return nil, StepCloseCart, err
		}
	}
	return res, "", nil
}

func (c *Checkout) assignCustomer(req Request) (*domain.Customer, error) {
	customer := req.Customer
	if customer == nil && req.Session != nil {
		customer = req.Session.Customer
	}
	if customer.IsGuest() {
		return nil, IdentityError{}
	}
	if err := c.Cart().AssignCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (c *Checkout) initBillingAddress(ctx context.Context, customer *domain.Customer, skipValidation bool) error {
	if skipValidation {
		c.Cart().SetBillingStub()
		return nil
	}
	addr, err := c.deps.Customers.DefaultBillingAddress(ctx, customer)
	if err != nil {
		return err
	}
	c.Cart().ImportBillingAddress(*addr)
	return nil
}

func (c *Checkout) initShippingAddress(ctx context.Context, customer *domain.Customer) error {
	addr, err := c.deps.Customers.DefaultShippingAddress(ctx, customer)
	if err != nil {
		return err
	}
	c.Cart().ImportShippingAddress(*addr)
	return nil
}

func (c *Checkout) addProduct(ctx context.Context, product domain.Product, req *domain.ProductRequest) error {
	if err := c.Cart().AddProduct(product, req); err != nil {
		return err
	}
	return c.save(ctx)
}

// initPaymentMethod selects the payment method and reports whether the cart is a free quote.
// A free quote always pays with the free method, whatever the caller asked for.
func (c *Checkout) initPaymentMethod(ctx context.Context, code string) (bool, error) {
	free, err := c.isFreeQuote(ctx)
	if err != nil {
		return false, err
	}
	if free {
		code = domain.FreePaymentMethodCode
	} else {
		method, err := c.deps.Payments.Resolve(ctx, c.store.ID, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, domain.ErrPaymentMethodUnavailable
			}
			return false, err
		}
		if !method.IsAvailable(c.Cart()) {
			return false, domain.ErrPaymentMethodUnavailable
		}
	}
	c.Cart().PaymentMethod = code
	if err := c.save(ctx); err != nil {
		return false, err
	}
	return free, nil
}

func (c *Checkout) isFreeQuote(ctx context.Context) (bool, error) {
	method, err := c.deps.Payments.Resolve(ctx, c.store.ID, domain.FreePaymentMethodCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return method.IsAvailable(c.Cart()), nil
}

func (c *Checkout) closeCart(ctx context.Context) error {
	orderID, err := c.deps.OrderIDs.ReserveOrderID(ctx, c.store.ID)
	if err != nil {
		return err
	}
	c.Cart().Close(orderID)
	return c.save(ctx)
}

func (c *Checkout) save(ctx context.Context) error {
	if err := c.deps.Carts.Save(ctx, c.Cart()); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// rollback deactivates the persisted cart. It runs even when ctx is already cancelled.
func (c *Checkout) rollback(ctx context.Context) error {
	c.cart.Active = false
	err := c.deps.Carts.Save(context.WithoutCancel(ctx), c.cart)
	if c.deps.Metrics != nil {
		c.deps.Metrics.ObserveRollback(err == nil)
	}
	if err != nil {
		c.deps.Logger.Printf("checkout: rollback failed cart=%s err=%v", c.cart.ID, err)
		return &PersistenceError{Err: err}
	}
	return nil
}

func (c *Checkout) observe(outcome, step string, start time.Time) {
	if c.deps.Metrics == nil {
		return
	}
	c.deps.Metrics.ObserveCheckout(outcome, step, time.Since(start))
}

func cartID(cart *domain.Cart) string {
	if cart == nil {
		return ""
	}
	return cart.ID
}
