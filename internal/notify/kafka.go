package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"instant-checkout/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// Writer is the part of *kafka.Writer the notifier needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOptions tunes the publisher's circuit breaker.
type KafkaOptions struct {
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
	Logger      *log.Logger
}

// Kafka publishes order events to a topic. Publishing goes through a circuit
// breaker so an unavailable broker fails fast instead of stalling checkouts.
type Kafka struct {
	writer  Writer
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *log.Logger
}

func NewKafka(writer Writer, opts KafkaOptions) *Kafka {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	maxFailures := opts.MaxFailures
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order-notifications",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("notify: breaker=%s state %s -> %s", name, from, to)
		},
	})
	return &Kafka{writer: writer, breaker: breaker, logger: logger}
}

// NewWriter builds a kafka writer for the topic, keyed by order number.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (k *Kafka) OrderPlaced(ctx context.Context, o *domain.Order) error {
	ev := NewOrderPlaced(o)
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = k.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, k.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(ev.OrderNumber),
			Value: data,
			Time:  ev.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(ev.Type)},
				{Key: "event-id", Value: []byte(ev.ID)},
			},
		})
	})
	if err != nil {
		return fmt.Errorf("publish %s order=%s: %w", ev.Type, ev.OrderNumber, err)
	}
	k.logger.Printf("notify: published %s id=%s order=%s", ev.Type, ev.ID, ev.OrderNumber)
	return nil
}

// State reports the breaker state, for readiness output.
func (k *Kafka) State() string {
	return k.breaker.State().String()
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
