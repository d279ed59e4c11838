package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicInvoiceEvents = "invoice.events"
)

// Event types.
const (
	BookingCreated       = "booking.created"
	BookingConfirmed     = "booking.confirmed"
	BookingCancelled     = "booking.cancelled"
	BookingStatusChanged = "booking.status_changed"
	InvoicePaid          = "invoice.paid"
)

// BookingCreatedEvent is emitted after a booking row is persisted.
type BookingCreatedEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	Reference    string    `json:"reference"`
	PropertyID   uuid.UUID `json:"property_id"`
	PropertyName string    `json:"property_name"`
	GuestName    string    `json:"guest_name"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	Status       string    `json:"status"`
	Channel      string    `json:"channel"`
	TotalCents   int64     `json:"total_cents"`
	Currency     string    `json:"currency"`
	ActorID      uuid.UUID `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is emitted when a booking transitions to confirmed.
type BookingConfirmedEvent struct {
	BookingID    uuid.UUID  `json:"booking_id"`
	Reference    string     `json:"reference"`
	PropertyID   uuid.UUID  `json:"property_id"`
	PropertyName string     `json:"property_name"`
	GuestName    string     `json:"guest_name"`
	InvoiceID    *uuid.UUID `json:"invoice_id,omitempty"`
	ActorID      uuid.UUID  `json:"actor_id"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// BookingCancelledEvent is emitted when a booking is soft-cancelled.
type BookingCancelledEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	Reference    string    `json:"reference"`
	PropertyID   uuid.UUID `json:"property_id"`
	PropertyName string    `json:"property_name"`
	GuestName    string    `json:"guest_name"`
	Reason       string    `json:"reason,omitempty"`
	ActorID      uuid.UUID `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is emitted for status changes without a dedicated
// event type.
type BookingStatusChangedEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	Reference    string    `json:"reference"`
	PropertyID   uuid.UUID `json:"property_id"`
	PropertyName string    `json:"property_name"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	ActorID      uuid.UUID `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// InvoicePaidEvent arrives on invoice.events when the billing side settles an
// invoice. The booking service flips the booking's payment status in response.
type InvoicePaidEvent struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	PaidAt      time.Time `json:"paid_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}
