package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/usecase"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Consumer struct {
	client   *kgo.Client
	producer producer
	handler  usecase.EventHandler
	ready    chan struct{}
}

func NewConsumer(client *kgo.Client, handler usecase.EventHandler) *Consumer {
	return &Consumer{
		client:   client,
		producer: client,
		handler:  handler,
		ready:    make(chan struct{}),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	close(c.ready)
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			log.Printf("Consumer poll errors: %v", errs)
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			c.processRecord(ctx, record)
		}

		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			log.Printf("Failed to commit records: %v", err)
		}
	}
}

func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) {
	var err error
	switch record.Topic {
	case TopicBookingPlaced:
		err = c.handleBookingPlaced(ctx, record)
	case TopicPaymentAsserted:
		err = c.handlePaymentAsserted(ctx, record)
	default:
		return
	}
	if err != nil {
		log.Printf("Failed to process %s record (%s): %v", record.Topic, header(record, EventTypeHeaderKey), err)
		c.sendToDLQ(ctx, record, err.Error())
	}
}

func (c *Consumer) handleBookingPlaced(ctx context.Context, record *kgo.Record) error {
	var event domain.BookingPlacedEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		return fmt.Errorf("invalid booking payload: %w", err)
	}
	if event.SchemaVersion > domain.EventSchemaVersion {
		return fmt.Errorf("unsupported schema version %d", event.SchemaVersion)
	}
	return c.handler.HandleBookingPlaced(ctx, event)
}

func (c *Consumer) handlePaymentAsserted(ctx context.Context, record *kgo.Record) error {
	var event domain.PaymentAssertedEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		return fmt.Errorf("invalid payment payload: %w", err)
	}
	if event.SchemaVersion > domain.EventSchemaVersion {
		return fmt.Errorf("unsupported schema version %d", event.SchemaVersion)
	}
	return c.handler.HandlePaymentAsserted(ctx, event)
}

func (c *Consumer) sendToDLQ(ctx context.Context, record *kgo.Record, message string) {
	headers := append([]kgo.RecordHeader{}, record.Headers...)
	headers = append(headers, kgo.RecordHeader{Key: ErrorHeaderKey, Value: []byte(message)})

	dlqRecord := &kgo.Record{
		Topic:   record.Topic + TopicDLQSuffix,
		Key:     record.Key,
		Value:   record.Value,
		Headers: headers,
	}
	if err := c.producer.ProduceSync(ctx, dlqRecord).FirstErr(); err != nil {
		log.Printf("Failed to send record to %s: %v", dlqRecord.Topic, err)
	}
}
