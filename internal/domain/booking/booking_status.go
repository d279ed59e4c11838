package booking

import "fmt"

// BookingStatus represents the current state of a reservation in its lifecycle.
type BookingStatus string

const (
	StatusInquiry    BookingStatus = "inquiry"
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusBlocked    BookingStatus = "blocked"
)

// No transition table is enforced: back-office staff may move a booking
// between any two statuses. The status set itself is closed.
var knownStatuses = map[BookingStatus]struct{}{
	StatusInquiry:    {},
	StatusPending:    {},
	StatusConfirmed:  {},
	StatusCheckedIn:  {},
	StatusCheckedOut: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusBlocked:    {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := knownStatuses[s]
	return exists
}

// IsCancelled returns true for the cancelled status.
func (s BookingStatus) IsCancelled() bool {
	return s == StatusCancelled
}

// BlocksCalendar returns true if a booking in this status occupies its stay
// period for conflict purposes. Cancelled bookings never block the calendar.
func (s BookingStatus) BlocksCalendar() bool {
	return s != StatusCancelled
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus tracks how much of the booking total has been settled.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}
