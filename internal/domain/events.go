package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventSchemaVersion = 1

type BookingPlacedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventID       string          `json:"event_id"`
	SessionID     string          `json:"session_id"`
	Bookings      []Booking       `json:"bookings"`
	Total         decimal.Decimal `json:"total"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// PaymentAssertedEvent records a customer's claim to have paid. It is never
// proof of payment.
type PaymentAssertedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	BookingIDs    []string  `json:"booking_ids"`
	Amount        string    `json:"amount"`
	CustomerName  string    `json:"customer_name"`
	AssertedAt    time.Time `json:"asserted_at"`
}
