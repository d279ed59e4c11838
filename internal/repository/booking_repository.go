package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/stayops/service-booking/internal/domain"
	bookingDomain "github.com/stayops/service-booking/internal/domain/booking"
)

// Postgres error codes that the bookings_no_overlap exclusion constraint and
// the unique reference index raise.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference     string     `gorm:"uniqueIndex;not null;size:20"`
	PropertyID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckInDate   time.Time  `gorm:"type:date;not null;index"`
	CheckOutDate  time.Time  `gorm:"type:date;not null;index"`
	GuestName     string     `gorm:"not null;size:200"`
	GuestCount    int        `gorm:"not null;default:1"`
	Channel       string     `gorm:"size:50"`
	Notes         string     `gorm:"size:1000"`
	Status        string     `gorm:"not null;size:30;index"`
	PaymentStatus string     `gorm:"not null;size:20;default:'unpaid'"`
	TotalCents    int64      `gorm:"not null;default:0"`
	Currency      string     `gorm:"not null;size:3;default:'USD'"`
	InvoiceID     *uuid.UUID `gorm:"type:uuid;index"`
	CancelReason  string     `gorm:"size:500"`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByProperty retrieves bookings for a property with pagination.
func (r *GormBookingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("property_id = ?", propertyID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count property bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find property bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindActiveInPeriod retrieves the non-cancelled bookings on a property whose
// stay period collides with the given one. Both bounds are inclusive, so a
// booking ending on the proposed check-in day is returned.
func (r *GormBookingRepository) FindActiveInPeriod(ctx context.Context, propertyID uuid.UUID, period bookingDomain.StayPeriod) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status <> ?", propertyID, bookingDomain.StatusCancelled.String()).
		Where("check_in_date <= ? AND check_out_date >= ?", period.CheckOut, period.CheckIn).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query bookings in period: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// FindInCalendarRange retrieves all bookings touching the date window, across
// properties.
func (r *GormBookingRepository) FindInCalendarRange(ctx context.Context, from, to time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("check_in_date <= ? AND check_out_date >= ?", to, from).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query calendar range: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking. A bookings_no_overlap exclusion violation --
// the storage-level backstop for the application's conflict check -- surfaces
// as the same conflict error the pre-write check raises.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isOverlapViolation(err) {
			return domain.NewConflictError("property is already booked for the selected dates")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before the write).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"property_id":    model.PropertyID,
			"check_in_date":  model.CheckInDate,
			"check_out_date": model.CheckOutDate,
			"guest_name":     model.GuestName,
			"guest_count":    model.GuestCount,
			"channel":        model.Channel,
			"notes":          model.Notes,
			"status":         model.Status,
			"payment_status": model.PaymentStatus,
			"total_cents":    model.TotalCents,
			"currency":       model.Currency,
			"invoice_id":     model.InvoiceID,
			"cancel_reason":  model.CancelReason,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		if isOverlapViolation(result.Error) {
			return domain.NewConflictError("property is already booked for the selected dates")
		}
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// isOverlapViolation reports whether err is a postgres exclusion or unique
// constraint violation.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation
	}
	return false
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            bk.ID(),
		Reference:     bk.Reference(),
		PropertyID:    bk.PropertyID(),
		CheckInDate:   bk.Period().CheckIn,
		CheckOutDate:  bk.Period().CheckOut,
		GuestName:     bk.GuestName(),
		GuestCount:    bk.GuestCount(),
		Channel:       bk.Channel(),
		Notes:         bk.Notes(),
		Status:        bk.Status().String(),
		PaymentStatus: string(bk.PaymentStatus()),
		TotalCents:    bk.TotalCents(),
		Currency:      bk.Currency(),
		InvoiceID:     bk.InvoiceID(),
		CancelReason:  bk.CancelReason(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	period := bookingDomain.StayPeriod{
		CheckIn:  m.CheckInDate.UTC(),
		CheckOut: m.CheckOutDate.UTC(),
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.Reference,
		m.PropertyID,
		period,
		m.GuestName,
		m.GuestCount,
		m.Channel,
		m.Notes,
		status,
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.TotalCents,
		m.Currency,
		m.InvoiceID,
		m.CancelReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
