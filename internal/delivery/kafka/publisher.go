package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher writes storefront events to Kafka, keyed by cart session so
// one shopper's events stay ordered on a single partition.
type Publisher struct {
	client producer
}

func NewPublisher(client *kgo.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishBookingPlaced(ctx context.Context, event domain.BookingPlacedEvent) error {
	return p.publish(ctx, TopicBookingPlaced, EventBookingPlaced, event.SessionID, event)
}

func (p *Publisher) PublishPaymentAsserted(ctx context.Context, event domain.PaymentAssertedEvent) error {
	return p.publish(ctx, TopicPaymentAsserted, EventPaymentAsserted, event.SessionID, event)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: EventTypeHeaderKey, Value: []byte(eventType)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}
