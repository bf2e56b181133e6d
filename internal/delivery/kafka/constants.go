package kafka

import "time"

const (
	TopicBookingPlaced   = "storefront.booking.placed"
	TopicPaymentAsserted = "storefront.payment.asserted"
	TopicDLQSuffix       = ".dlq"

	PublishTimeout = 3 * time.Second

	ErrorHeaderKey     = "x-error"
	EventTypeHeaderKey = "x-event-type"
)

var Topics = []string{TopicBookingPlaced, TopicPaymentAsserted}
