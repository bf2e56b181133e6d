package kafka

import (
	"context"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/usecase"
)

// DirectPublisher hands events straight to the handler when the broker is
// disabled.
type DirectPublisher struct {
	handler usecase.EventHandler
}

func NewDirectPublisher(handler usecase.EventHandler) *DirectPublisher {
	return &DirectPublisher{handler: handler}
}

func (d *DirectPublisher) PublishBookingPlaced(ctx context.Context, event domain.BookingPlacedEvent) error {
	return d.handler.HandleBookingPlaced(ctx, event)
}

func (d *DirectPublisher) PublishPaymentAsserted(ctx context.Context, event domain.PaymentAssertedEvent) error {
	return d.handler.HandlePaymentAsserted(ctx, event)
}
