package notify

import (
	"context"
	"io"
	"log"
	"time"

	"instant-checkout/internal/domain"
	"github.com/google/uuid"
)

// EventOrderPlaced is the type of the event sent after an order is written.
const EventOrderPlaced = "order.placed"

// Event is the payload published for order notifications.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	OccurredAt    time.Time `json:"occurredAt"`
	StoreID       string    `json:"storeId"`
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	CartID        string    `json:"cartId"`
	CustomerID    string    `json:"customerId"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	PaymentMethod string    `json:"paymentMethod"`
	Currency      string    `json:"currency"`
	TotalCents    int64     `json:"totalCents"`
	ItemsQty      int       `json:"itemsQty"`
}

// Notifier tells the customer about a placed order.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}

// NewOrderPlaced builds the event for a stored order.
func NewOrderPlaced(o *domain.Order) Event {
	qty := 0
	for _, l := range o.Lines {
		qty += l.Quantity
	}
	return Event{
		ID:            uuid.NewString(),
		Type:          EventOrderPlaced,
		OccurredAt:    time.Now().UTC(),
		StoreID:       o.StoreID,
		OrderID:       o.ID,
		OrderNumber:   o.IncrementID,
		CartID:        o.CartID,
		CustomerID:    o.CustomerID,
		CustomerEmail: o.CustomerEmail,
		PaymentMethod: o.PaymentMethod,
		Currency:      o.Currency,
		TotalCents:    o.TotalCents,
		ItemsQty:      qty,
	}
}

// Log writes notifications to a logger. Used when no broker is configured.
type Log struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Log{logger: logger}
}

func (l *Log) OrderPlaced(_ context.Context, o *domain.Order) error {
	ev := NewOrderPlaced(o)
	l.logger.Printf("notify: %s id=%s order=%s customer=%s total_cents=%d", ev.Type, ev.ID, ev.OrderNumber, ev.CustomerID, ev.TotalCents)
	return nil
}
