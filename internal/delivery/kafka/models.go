package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	EventBookingPlaced   = "booking.placed"
	EventPaymentAsserted = "payment.asserted"
)

// producer is the slice of *kgo.Client the publisher and the DLQ path need.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

func header(record *kgo.Record, key string) string {
	for _, h := range record.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
