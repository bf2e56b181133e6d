package usecase

import (
	"context"
	"io"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
)

type EventPublisher interface {
	PublishBookingPlaced(ctx context.Context, event domain.BookingPlacedEvent) error
	PublishPaymentAsserted(ctx context.Context, event domain.PaymentAssertedEvent) error
}

// EventHandler consumes the events EventPublisher emits, either in-process or
// from the broker.
type EventHandler interface {
	HandleBookingPlaced(ctx context.Context, event domain.BookingPlacedEvent) error
	HandlePaymentAsserted(ctx context.Context, event domain.PaymentAssertedEvent) error
}

// Cache stores JSON-encodable values. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error)
}

type BookingFeed interface {
	Broadcast(event domain.BookingPlacedEvent)
}

type Clock func() time.Time
