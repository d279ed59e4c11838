package booking

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/service-booking/internal/domain"
)

func TestNewBooking(t *testing.T) {
	propertyID := uuid.New()
	period := mustPeriod(t, "2026-07-10", "2026-07-15")

	t.Run("valid booking", func(t *testing.T) {
		bk, err := NewBooking(propertyID, period, "Ana Petrova", 3, "airbnb", StatusConfirmed, 75000, "EUR", "late arrival")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, bk.ID())
		assert.True(t, strings.HasPrefix(bk.Reference(), "BK-"))
		assert.Len(t, bk.Reference(), 9)
		assert.Equal(t, StatusConfirmed, bk.Status())
		assert.Equal(t, PaymentUnpaid, bk.PaymentStatus())
		assert.Equal(t, int64(1), bk.Version())
		assert.Nil(t, bk.InvoiceID())
	})

	t.Run("status defaults to pending", func(t *testing.T) {
		bk, err := NewBooking(propertyID, period, "Ana Petrova", 1, "", "", 0, "USD", "")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, bk.Status())
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name string
			fn   func() (*Booking, error)
		}{
			{"missing property", func() (*Booking, error) {
				return NewBooking(uuid.Nil, period, "Ana", 1, "", StatusPending, 0, "USD", "")
			}},
			{"zero period", func() (*Booking, error) {
				return NewBooking(propertyID, StayPeriod{}, "Ana", 1, "", StatusPending, 0, "USD", "")
			}},
			{"missing guest name", func() (*Booking, error) {
				return NewBooking(propertyID, period, "", 1, "", StatusPending, 0, "USD", "")
			}},
			{"zero guest count", func() (*Booking, error) {
				return NewBooking(propertyID, period, "Ana", 0, "", StatusPending, 0, "USD", "")
			}},
			{"unknown status", func() (*Booking, error) {
				return NewBooking(propertyID, period, "Ana", 1, "", "tentative", 0, "USD", "")
			}},
			{"negative total", func() (*Booking, error) {
				return NewBooking(propertyID, period, "Ana", 1, "", StatusPending, -100, "USD", "")
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := tc.fn()
				require.Error(t, err)
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			})
		}
	})
}

func TestBooking_ChangeStatus(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusPending)

	require.NoError(t, bk.ChangeStatus(StatusCheckedIn))
	assert.Equal(t, StatusCheckedIn, bk.Status())

	// Any known status may follow any other.
	require.NoError(t, bk.ChangeStatus(StatusInquiry))
	assert.Equal(t, StatusInquiry, bk.Status())

	err := bk.ChangeStatus("on_hold")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, StatusInquiry, bk.Status())
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusConfirmed)

	bk.Cancel("double booked upstream")
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "double booked upstream", bk.CancelReason())
	assert.False(t, bk.Status().BlocksCalendar())

	// A second cancel is a no-op: the original reason is kept.
	bk.Cancel("other reason")
	assert.Equal(t, "double booked upstream", bk.CancelReason())
}

func TestBooking_Reschedule(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusConfirmed)

	newPeriod := mustPeriod(t, "2026-08-01", "2026-08-05")
	require.NoError(t, bk.Reschedule(newPeriod))
	assert.Equal(t, newPeriod, bk.Period())

	err := bk.Reschedule(StayPeriod{})
	assert.Error(t, err)
}

func TestBooking_UpdateGuestDetails(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusPending)

	require.NoError(t, bk.UpdateGuestDetails("Marco Silva", 4, "booking.com", "crib needed"))
	assert.Equal(t, "Marco Silva", bk.GuestName())
	assert.Equal(t, 4, bk.GuestCount())
	assert.Equal(t, "booking.com", bk.Channel())

	assert.Error(t, bk.UpdateGuestDetails("", 2, "", ""))
	assert.Error(t, bk.UpdateGuestDetails("Marco Silva", 0, "", ""))
}

func TestBooking_UpdateTotal(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusPending)

	require.NoError(t, bk.UpdateTotal(120000, "GBP"))
	assert.Equal(t, int64(120000), bk.TotalCents())
	assert.Equal(t, "GBP", bk.Currency())

	// Empty currency keeps the existing one.
	require.NoError(t, bk.UpdateTotal(90000, ""))
	assert.Equal(t, "GBP", bk.Currency())

	assert.Error(t, bk.UpdateTotal(-1, "USD"))
}

func TestBooking_PaymentAndInvoice(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusConfirmed)

	invoiceID := uuid.New()
	bk.AttachInvoice(invoiceID)
	require.NotNil(t, bk.InvoiceID())
	assert.Equal(t, invoiceID, *bk.InvoiceID())

	bk.MarkPaid()
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t, uuid.New(), "2026-07-10", "2026-07-15", StatusPending)
	require.Equal(t, int64(1), bk.Version())

	bk.IncrementVersion()
	bk.IncrementVersion()
	assert.Equal(t, int64(3), bk.Version())
}

func TestParseBookingStatus(t *testing.T) {
	for _, s := range []string{"inquiry", "pending", "confirmed", "checked_in", "checked_out", "completed", "cancelled", "blocked"} {
		status, err := ParseBookingStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, status.String())
	}

	_, err := ParseBookingStatus("unknown")
	assert.Error(t, err)
}
