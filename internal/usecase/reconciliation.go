package usecase

import (
	"context"
	"log"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
)

type bookingMarker interface {
	MarkBookingsStatus(ctx context.Context, ids []string, from, to string) (int64, error)
}

// ReconciliationService reacts to checkout events: placed bookings go to the
// admin feed, payment claims flag bookings for manual checking.
type ReconciliationService struct {
	store bookingMarker
	feed  BookingFeed
}

func NewReconciliationService(store bookingMarker, feed BookingFeed) *ReconciliationService {
	return &ReconciliationService{store: store, feed: feed}
}

func (s *ReconciliationService) HandleBookingPlaced(_ context.Context, event domain.BookingPlacedEvent) error {
	if s.feed != nil {
		s.feed.Broadcast(event)
	}
	return nil
}

func (s *ReconciliationService) HandlePaymentAsserted(ctx context.Context, event domain.PaymentAssertedEvent) error {
	if len(event.BookingIDs) == 0 {
		return nil
	}
	n, err := s.store.MarkBookingsStatus(ctx, event.BookingIDs, domain.BookingStatusPending, domain.BookingStatusPaymentClaimed)
	if err != nil {
		return err
	}
	log.Printf("Session %s claims payment of %s for %d booking(s), %d flagged", event.SessionID, event.Amount, len(event.BookingIDs), n)
	return nil
}
