package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByProperty retrieves bookings for a specific property with pagination,
	// most recent first.
	FindByProperty(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindActiveInPeriod retrieves the non-cancelled bookings on a property
	// whose stay period collides with the given one under the inclusive
	// overlap test. Used by conflict detection.
	FindActiveInPeriod(ctx context.Context, propertyID uuid.UUID, period StayPeriod) ([]*Booking, error)

	// FindInCalendarRange retrieves all bookings whose stay period touches the
	// given date window, across properties. Backs the calendar views.
	FindInCalendarRange(ctx context.Context, from, to time.Time) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
