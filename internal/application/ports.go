package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/stayops/service-booking/internal/domain"
	bookingDomain "github.com/stayops/service-booking/internal/domain/booking"
	invoiceDomain "github.com/stayops/service-booking/internal/domain/invoice"
)

// Notifier dispatches booking lifecycle notifications. Dispatch is
// fire-and-forget from the caller's point of view: failures are logged and
// surfaced as warnings, never as operation failures.
type Notifier interface {
	BookingCreated(ctx context.Context, b *bookingDomain.Booking, propertyName string, actor domain.Actor) error
	BookingConfirmed(ctx context.Context, b *bookingDomain.Booking, propertyName string, actor domain.Actor) error
	BookingCancelled(ctx context.Context, b *bookingDomain.Booking, propertyName string, actor domain.Actor, reason string) error
	BookingStatusChanged(ctx context.Context, b *bookingDomain.Booking, propertyName string, oldStatus, newStatus bookingDomain.BookingStatus, actor domain.Actor) error
}

// InvoiceGenerator creates an invoice from a booking. Generation failure is a
// secondary error: the booking operation that triggered it stays committed.
type InvoiceGenerator interface {
	CreateFromBooking(ctx context.Context, bookingID uuid.UUID) (*invoiceDomain.Invoice, error)
}
