// Package events publishes checkout payment outcomes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"fluxo-storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const DefaultTopic = "checkout-payments"

// PaymentEvent describes the terminal outcome of one payment attempt.
type PaymentEvent struct {
	OrderID    string               `json:"orderId"`
	SessionID  string               `json:"sessionId"`
	Email      string               `json:"email"`
	Method     domain.PaymentMethod `json:"paymentMethod"`
	Status     domain.PaymentStatus `json:"status"`
	Reason     string               `json:"reason,omitempty"`
	Total      decimal.Decimal      `json:"total"`
	Items      int                  `json:"items"`
	OccurredAt time.Time            `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *log.Logger
}

func NewKafkaPublisher(topic string, logger *log.Logger, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger *log.Logger) *KafkaPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish payment event order=%s: %w", event.OrderID, err)
	}
	p.logger.Printf("events: published order=%s status=%s", event.OrderID, event.Status)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// buildMessage keys by session so every attempt of one checkout lands on the same partition.
func buildMessage(event PaymentEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal payment event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("payment." + event.Status.String())},
		},
	}, nil
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PaymentEvent) error { return nil }
func (NopPublisher) Close() error { return nil }
