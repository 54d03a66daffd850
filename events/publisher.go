package events

import (
	"context"
	"log"
)

const (
	TopicCartItemAdded        = "cart.item.added"
	TopicCartItemRemoved      = "cart.item.removed"
	TopicOrderPlaced          = "order.placed"
	TopicOrderCompleted       = "order.completed"
	TopicPaymentStatusChanged = "payment.status_changed"
)

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// New returns a Kafka publisher for brokers, or a NopPublisher when brokers is empty
// or the producer cannot be created.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		log.Println("WARNING: KAFKA_BROKERS not set - domain events will not be published")
		return NopPublisher{}
	}
	p, err := NewKafkaPublisher(brokers, nil)
	if err != nil {
		log.Printf("Warning: Kafka producer unavailable, events disabled: %v", err)
		return NopPublisher{}
	}
	log.Printf("Kafka producer initialized for brokers %v", brokers)
	return p
}
