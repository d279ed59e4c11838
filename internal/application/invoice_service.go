package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayops/service-booking/internal/cache"
	bookingDomain "github.com/stayops/service-booking/internal/domain/booking"
	invoiceDomain "github.com/stayops/service-booking/internal/domain/invoice"
)

// InvoiceService generates and retrieves invoices for bookings. It implements
// the InvoiceGenerator port consumed by BookingService.
type InvoiceService struct {
	invoices    invoiceDomain.Repository
	bookings    bookingDomain.Repository
	invalidator cache.Invalidator
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	invoices invoiceDomain.Repository,
	bookings bookingDomain.Repository,
	invalidator cache.Invalidator,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:    invoices,
		bookings:    bookings,
		invalidator: invalidator,
		logger:      logger,
	}
}

// CreateFromBooking generates an invoice over the booking's total and links
// it back to the booking. Idempotent: a booking that already carries an
// invoice gets its existing one back.
func (s *InvoiceService) CreateFromBooking(ctx context.Context, bookingID uuid.UUID) (*invoiceDomain.Invoice, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if existing := bk.InvoiceID(); existing != nil {
		return s.invoices.FindByID(ctx, *existing)
	}

	inv, err := invoiceDomain.NewInvoice(bk.ID(), bk.TotalCents(), bk.Currency())
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	bk.AttachInvoice(inv.ID())
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to link invoice to booking: %w", err)
	}

	if err := s.invalidator.Invalidate(ctx, cache.KeyInvoices(), cache.KeyFinancialSummary()); err != nil {
		s.logger.Warn("invoice view invalidation failed", zap.Error(err))
	}

	return inv, nil
}

// GetByBooking retrieves the invoice linked to a booking.
func (s *InvoiceService) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*invoiceDomain.Invoice, error) {
	return s.invoices.FindByBookingID(ctx, bookingID)
}
