package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/stayops/service-booking/internal/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the reservation domain.
type Booking struct {
	id        uuid.UUID
	reference string

	propertyID uuid.UUID
	period     StayPeriod

	guestName  string
	guestCount int
	channel    string
	notes      string

	status        BookingStatus
	paymentStatus PaymentStatus
	totalCents    int64
	currency      string
	invoiceID     *uuid.UUID
	cancelReason  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a booking reference in the format "BK-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate. Status defaults to pending when
// empty; guest and financial attributes are carried but only shallowly checked.
func NewBooking(
	propertyID uuid.UUID,
	period StayPeriod,
	guestName string,
	guestCount int,
	channel string,
	status BookingStatus,
	totalCents int64,
	currency string,
	notes string,
) (*Booking, error) {
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	if period.IsZero() {
		return nil, domain.NewValidationError("stay period is required")
	}
	if guestName == "" {
		return nil, domain.NewValidationError("guest name is required")
	}
	if guestCount < 1 {
		return nil, domain.NewValidationError("guest count must be at least 1")
	}
	if status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", status))
	}
	if totalCents < 0 {
		return nil, domain.NewValidationError("total amount cannot be negative")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		reference:     reference,
		propertyID:    propertyID,
		period:        period,
		guestName:     guestName,
		guestCount:    guestCount,
		channel:       channel,
		notes:         notes,
		status:        status,
		paymentStatus: PaymentUnpaid,
		totalCents:    totalCents,
		currency:      currency,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	reference string,
	propertyID uuid.UUID,
	period StayPeriod,
	guestName string,
	guestCount int,
	channel string,
	notes string,
	status BookingStatus,
	paymentStatus PaymentStatus,
	totalCents int64,
	currency string,
	invoiceID *uuid.UUID,
	cancelReason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		reference:     reference,
		propertyID:    propertyID,
		period:        period,
		guestName:     guestName,
		guestCount:    guestCount,
		channel:       channel,
		notes:         notes,
		status:        status,
		paymentStatus: paymentStatus,
		totalCents:    totalCents,
		currency:      currency,
		invoiceID:     invoiceID,
		cancelReason:  cancelReason,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-readable booking reference.
func (b *Booking) Reference() string { return b.reference }

// PropertyID returns the owning property's identifier.
func (b *Booking) PropertyID() uuid.UUID { return b.propertyID }

// Period returns the stay period.
func (b *Booking) Period() StayPeriod { return b.period }

// GuestName returns the primary guest's name.
func (b *Booking) GuestName() string { return b.guestName }

// GuestCount returns the number of guests.
func (b *Booking) GuestCount() int { return b.guestCount }

// Channel returns the origin channel tag (direct, airbnb, ...).
func (b *Booking) Channel() string { return b.channel }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the payment settlement status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// TotalCents returns the monetary total in cents.
func (b *Booking) TotalCents() int64 { return b.totalCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// InvoiceID returns the linked invoice's identifier, or nil if none.
func (b *Booking) InvoiceID() *uuid.UUID { return b.invoiceID }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Reschedule moves the booking to a new stay period.
func (b *Booking) Reschedule(period StayPeriod) error {
	if period.IsZero() {
		return domain.NewValidationError("stay period is required")
	}
	b.period = period
	b.updatedAt = time.Now().UTC()
	return nil
}

// MoveToProperty reassigns the booking to another property.
func (b *Booking) MoveToProperty(propertyID uuid.UUID) error {
	if propertyID == uuid.Nil {
		return domain.NewValidationError("property ID is required")
	}
	b.propertyID = propertyID
	b.updatedAt = time.Now().UTC()
	return nil
}

// UpdateGuestDetails replaces the guest-facing attributes.
func (b *Booking) UpdateGuestDetails(guestName string, guestCount int, channel, notes string) error {
	if guestName == "" {
		return domain.NewValidationError("guest name is required")
	}
	if guestCount < 1 {
		return domain.NewValidationError("guest count must be at least 1")
	}
	b.guestName = guestName
	b.guestCount = guestCount
	b.channel = channel
	b.notes = notes
	b.updatedAt = time.Now().UTC()
	return nil
}

// UpdateTotal replaces the monetary total.
func (b *Booking) UpdateTotal(totalCents int64, currency string) error {
	if totalCents < 0 {
		return domain.NewValidationError("total amount cannot be negative")
	}
	b.totalCents = totalCents
	if currency != "" {
		b.currency = currency
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// ChangeStatus sets the booking status. Any status may be set to any other;
// only membership in the status set is checked.
func (b *Booking) ChangeStatus(status BookingStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", status))
	}
	b.status = status
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel soft-cancels the booking. The row stays in place; it simply stops
// participating in conflict detection. Cancelling an already-cancelled
// booking is a no-op.
func (b *Booking) Cancel(reason string) {
	if b.status == StatusCancelled {
		return
	}
	b.status = StatusCancelled
	b.cancelReason = reason
	b.updatedAt = time.Now().UTC()
}

// AttachInvoice links the booking to its generated invoice.
func (b *Booking) AttachInvoice(invoiceID uuid.UUID) {
	b.invoiceID = &invoiceID
	b.updatedAt = time.Now().UTC()
}

// MarkPaid records full payment of the booking total.
func (b *Booking) MarkPaid() {
	b.paymentStatus = PaymentPaid
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
