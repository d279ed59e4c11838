package invoice

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/stayops/service-booking/internal/domain"
)

const invoiceNumberChars = "0123456789"

// InvoiceStatus represents the billing state of an invoice.
type InvoiceStatus string

const (
	StatusIssued InvoiceStatus = "issued"
	StatusPaid   InvoiceStatus = "paid"
	StatusVoid   InvoiceStatus = "void"
)

// Invoice is generated from a booking and linked back to it.
type Invoice struct {
	id          uuid.UUID
	number      string
	bookingID   uuid.UUID
	amountCents int64
	currency    string
	status      InvoiceStatus
	issuedAt    time.Time
	paidAt      *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// generateInvoiceNumber creates an invoice number in the format "INV-XXXXXXXX".
func generateInvoiceNumber() (string, error) {
	result := make([]byte, 8)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(invoiceNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate invoice number: %w", err)
		}
		result[i] = invoiceNumberChars[n.Int64()]
	}
	return "INV-" + string(result), nil
}

// NewInvoice creates an issued invoice for a booking.
func NewInvoice(bookingID uuid.UUID, amountCents int64, currency string) (*Invoice, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if amountCents < 0 {
		return nil, domain.NewValidationError("invoice amount cannot be negative")
	}

	number, err := generateInvoiceNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Invoice{
		id:          uuid.New(),
		number:      number,
		bookingID:   bookingID,
		amountCents: amountCents,
		currency:    currency,
		status:      StatusIssued,
		issuedAt:    now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructInvoice rebuilds an Invoice from persistence data (no validation).
func ReconstructInvoice(
	id uuid.UUID,
	number string,
	bookingID uuid.UUID,
	amountCents int64,
	currency string,
	status InvoiceStatus,
	issuedAt time.Time,
	paidAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Invoice {
	return &Invoice{
		id:          id,
		number:      number,
		bookingID:   bookingID,
		amountCents: amountCents,
		currency:    currency,
		status:      status,
		issuedAt:    issuedAt,
		paidAt:      paidAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the invoice's unique identifier.
func (i *Invoice) ID() uuid.UUID { return i.id }

// Number returns the human-readable invoice number.
func (i *Invoice) Number() string { return i.number }

// BookingID returns the identifier of the booking this invoice bills.
func (i *Invoice) BookingID() uuid.UUID { return i.bookingID }

// AmountCents returns the billed amount in cents.
func (i *Invoice) AmountCents() int64 { return i.amountCents }

// Currency returns the currency code.
func (i *Invoice) Currency() string { return i.currency }

// Status returns the billing status.
func (i *Invoice) Status() InvoiceStatus { return i.status }

// IssuedAt returns the issue timestamp.
func (i *Invoice) IssuedAt() time.Time { return i.issuedAt }

// PaidAt returns the payment timestamp, or nil if unpaid.
func (i *Invoice) PaidAt() *time.Time { return i.paidAt }

// CreatedAt returns the creation timestamp.
func (i *Invoice) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (i *Invoice) UpdatedAt() time.Time { return i.updatedAt }

// MarkPaid records payment of the invoice.
func (i *Invoice) MarkPaid(at time.Time) {
	i.status = StatusPaid
	i.paidAt = &at
	i.updatedAt = time.Now().UTC()
}

// Repository defines the persistence contract for invoices.
type Repository interface {
	// FindByID retrieves an invoice by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByBookingID retrieves the invoice linked to a booking, if any.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Invoice, error)

	// Save persists a new invoice.
	Save(ctx context.Context, inv *Invoice) error

	// Update persists changes to an existing invoice.
	Update(ctx context.Context, inv *Invoice) error
}
