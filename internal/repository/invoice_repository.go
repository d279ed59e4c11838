package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stayops/service-booking/internal/domain"
	invoiceDomain "github.com/stayops/service-booking/internal/domain/invoice"
)

// InvoiceModel is the GORM model for the invoices table.
type InvoiceModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number      string     `gorm:"uniqueIndex;not null;size:20"`
	BookingID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	AmountCents int64      `gorm:"not null"`
	Currency    string     `gorm:"not null;size:3"`
	Status      string     `gorm:"not null;size:20"`
	IssuedAt    time.Time  `gorm:"not null"`
	PaidAt      *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InvoiceModel) TableName() string {
	return "invoices"
}

// GormInvoiceRepository is the GORM-based implementation of invoice.Repository.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository.
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID retrieves an invoice by its unique identifier.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoiceDomain.Invoice, error) {
	var model InvoiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("invoice", id.String())
		}
		return nil, fmt.Errorf("failed to find invoice by ID: %w", err)
	}
	return toDomainInvoice(&model), nil
}

// FindByBookingID retrieves the invoice linked to a booking.
func (r *GormInvoiceRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*invoiceDomain.Invoice, error) {
	var model InvoiceModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("invoice for booking", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find invoice by booking ID: %w", err)
	}
	return toDomainInvoice(&model), nil
}

// Save persists a new invoice.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoiceDomain.Invoice) error {
	model := toInvoiceModel(inv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

// Update persists changes to an existing invoice.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoiceDomain.Invoice) error {
	model := toInvoiceModel(inv)
	result := r.db.WithContext(ctx).
		Model(&InvoiceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"paid_at":    model.PaidAt,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("invoice", model.ID.String())
	}
	return nil
}

func toInvoiceModel(inv *invoiceDomain.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:          inv.ID(),
		Number:      inv.Number(),
		BookingID:   inv.BookingID(),
		AmountCents: inv.AmountCents(),
		Currency:    inv.Currency(),
		Status:      string(inv.Status()),
		IssuedAt:    inv.IssuedAt(),
		PaidAt:      inv.PaidAt(),
		CreatedAt:   inv.CreatedAt(),
		UpdatedAt:   inv.UpdatedAt(),
	}
}

func toDomainInvoice(m *InvoiceModel) *invoiceDomain.Invoice {
	return invoiceDomain.ReconstructInvoice(
		m.ID,
		m.Number,
		m.BookingID,
		m.AmountCents,
		m.Currency,
		invoiceDomain.InvoiceStatus(m.Status),
		m.IssuedAt,
		m.PaidAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
