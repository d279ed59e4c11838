package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayops/service-booking/internal/domain"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// StayPeriod is the [check-in, check-out] date range of a booking. Dates are
// stored at midnight UTC; the time component carries no meaning.
type StayPeriod struct {
	CheckIn  time.Time `json:"check_in_date"`
	CheckOut time.Time `json:"check_out_date"`
}

// NewStayPeriod builds a StayPeriod, requiring check-out strictly after check-in.
func NewStayPeriod(checkIn, checkOut time.Time) (StayPeriod, error) {
	checkIn = truncateToDate(checkIn)
	checkOut = truncateToDate(checkOut)
	if !checkOut.After(checkIn) {
		return StayPeriod{}, domain.NewValidationError("check-out date must be after check-in date")
	}
	return StayPeriod{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// ParseStayPeriod builds a StayPeriod from "YYYY-MM-DD" date strings.
func ParseStayPeriod(checkIn, checkOut string) (StayPeriod, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return StayPeriod{}, domain.NewValidationError("invalid check-in date: " + checkIn)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return StayPeriod{}, domain.NewValidationError("invalid check-out date: " + checkOut)
	}
	return NewStayPeriod(in, out)
}

// Overlaps reports whether two stay periods collide on the calendar.
//
// The comparison is inclusive on both bounds: a booking checking out on day N
// overlaps a booking checking in on day N. Same-day turnovers are therefore
// rejected; this matches the legacy back-office behavior.
func (p StayPeriod) Overlaps(other StayPeriod) bool {
	return !other.CheckIn.After(p.CheckOut) && !other.CheckOut.Before(p.CheckIn)
}

// Nights returns the number of nights covered by the period.
func (p StayPeriod) Nights() int {
	return int(p.CheckOut.Sub(p.CheckIn).Hours() / 24)
}

// IsZero reports whether the period is unset.
func (p StayPeriod) IsZero() bool {
	return p.CheckIn.IsZero() && p.CheckOut.IsZero()
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ConflictingBookings returns the candidates whose stay period collides with
// the proposed period. Cancelled bookings never participate, and the booking
// identified by exclude (its own prior record during an edit) is skipped.
func ConflictingBookings(candidates []*Booking, period StayPeriod, exclude uuid.UUID) []*Booking {
	var conflicts []*Booking
	for _, b := range candidates {
		if exclude != uuid.Nil && b.ID() == exclude {
			continue
		}
		if !b.Status().BlocksCalendar() {
			continue
		}
		if b.Period().Overlaps(period) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
