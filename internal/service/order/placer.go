package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"instant-checkout/internal/domain"
	"instant-checkout/internal/notify"
	orderrepo "instant-checkout/internal/repository/order"
)

// ErrInvalidCart is returned when a cart lacks something an order needs.
var ErrInvalidCart = errors.New("cart cannot be placed")

// Placer turns prepared carts into orders.
type Placer struct {
	repo     orderrepo.Repository
	notifier notify.Notifier
	logger   *log.Logger
}

func New(repo orderrepo.Repository, notifier notify.Notifier, logger *log.Logger) *Placer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	return &Placer{repo: repo, notifier: notifier, logger: logger}
}

// Place writes the order and deactivates the cart in one transaction. The
// customer notification is sent afterwards; a failed notification is logged
// and does not undo the order.
func (p *Placer) Place(ctx context.Context, cart *domain.Cart) (*domain.Order, error) {
	if err := Validate(cart); err != nil {
		return nil, err
	}

	incrementID := ""
	if cart.ReservedOrderID != nil {
		incrementID = *cart.ReservedOrderID
	}
	if incrementID == "" {
		id, err := p.repo.ReserveOrderID(ctx, cart.StoreID)
		if err != nil {
			return nil, fmt.Errorf("reserve order id: %w", err)
		}
		incrementID = id
	}

	o := fromCart(cart, incrementID)
	if err := p.repo.Create(ctx, o); err != nil {
		p.logger.Printf("order placer: create cart=%s increment_id=%s err=%v", cart.ID, incrementID, err)
		return nil, err
	}
	cart.Close(incrementID)
	p.logger.Printf("order placer: placed order=%s cart=%s total_cents=%d payment=%s", o.IncrementID, cart.ID, o.TotalCents, o.PaymentMethod)

	if err := p.notifier.OrderPlaced(ctx, o); err != nil {
		p.logger.Printf("order placer: notify order=%s err=%v", o.IncrementID, err)
	}
	return o, nil
}

// GetForCustomer returns an order by its number when it belongs to the
// customer. Orders of other customers are reported as missing.
func (p *Placer) GetForCustomer(ctx context.Context, storeID, customerID, incrementID string) (*domain.Order, error) {
	o, err := p.repo.GetByIncrementID(ctx, storeID, incrementID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Validate reports why a cart cannot become an order.
func Validate(cart *domain.Cart) error {
	switch {
	case cart == nil || !cart.HasIdentity():
		return fmt.Errorf("%w: cart is not saved", ErrInvalidCart)
	case !cart.Active:
		return domain.ErrCartInactive
	case cart.CustomerID == nil:
		return fmt.Errorf("%w: no customer assigned", ErrInvalidCart)
	case len(cart.Lines) == 0:
		return fmt.Errorf("%w: cart is empty", ErrInvalidCart)
	case cart.BillingAddress == nil:
		return fmt.Errorf("%w: billing address missing", ErrInvalidCart)
	case !cart.IsVirtual() && cart.ShippingAddress == nil:
		return fmt.Errorf("%w: shipping address missing", ErrInvalidCart)
	case cart.PaymentMethod == "":
		return fmt.Errorf("%w: payment method missing", ErrInvalidCart)
	}
	return nil
}

func fromCart(cart *domain.Cart, incrementID string) *domain.Order {
	o := &domain.Order{
		StoreID:         cart.StoreID,
		IncrementID:     incrementID,
		CartID:          cart.ID,
		CustomerID:      *cart.CustomerID,
		CustomerEmail:   cart.CustomerEmail,
		State:           domain.OrderStateNew,
		PaymentMethod:   cart.PaymentMethod,
		Currency:        cart.Currency,
		TotalCents:      cart.TotalCents,
		BillingAddress:  cart.BillingAddress,
		ShippingAddress: cart.ShippingAddress,
		Lines:           make([]domain.OrderLine, 0, len(cart.Lines)),
	}
	for _, l := range cart.Lines {
		o.Lines = append(o.Lines, domain.OrderLine{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.TotalCents,
			Snapshot:       l.Snapshot,
		})
	}
	return o
}
