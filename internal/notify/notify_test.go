package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"instant-checkout/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	err      error
	calls    int
	messages []kafka.Message
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func testOrder() *domain.Order {
	return &domain.Order{
		ID:            "o-1",
		StoreID:       "s-1",
		IncrementID:   "000000042",
		CartID:        "c-1",
		CustomerID:    "cust-1",
		PaymentMethod: "checkmo",
		Currency:      "USD",
		TotalCents:    900,
		Lines:         []domain.OrderLine{{ProductID: "p", Quantity: 3}},
	}
}

func TestKafka_PublishesOrderPlaced(t *testing.T) {
	w := &stubWriter{}
	n := NewKafka(w, KafkaOptions{})

	require.NoError(t, n.OrderPlaced(context.Background(), testOrder()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "000000042", string(msg.Key))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, EventOrderPlaced, ev.Type)
	assert.Equal(t, "cust-1", ev.CustomerID)
	assert.Equal(t, 3, ev.ItemsQty)
	assert.NotEmpty(t, ev.ID)
}

func TestKafka_BreakerOpensAfterFailures(t *testing.T) {
	w := &stubWriter{err: errors.New("broker down")}
	n := NewKafka(w, KafkaOptions{MaxFailures: 2, BreakerTimeout: time.Minute})
	ctx := context.Background()

	assert.Error(t, n.OrderPlaced(ctx, testOrder()))
	assert.Error(t, n.OrderPlaced(ctx, testOrder()))
	assert.Equal(t, "open", n.State())

	err := n.OrderPlaced(ctx, testOrder())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, w.calls)
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, ParseBrokers(""))
}

func TestLog_OrderPlaced(t *testing.T) {
	assert.NoError(t, NewLog(nil).OrderPlaced(context.Background(), testOrder()))
}
