package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayops/service-booking/internal/cache"
	"github.com/stayops/service-booking/internal/domain"
	bookingDomain "github.com/stayops/service-booking/internal/domain/booking"
	propertyDomain "github.com/stayops/service-booking/internal/domain/property"
)

const msgAlreadyBooked = "property is already booked for the selected dates"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	PropertyID   uuid.UUID `json:"property_id" binding:"required"`
	CheckInDate  string    `json:"check_in_date" binding:"required"`
	CheckOutDate string    `json:"check_out_date" binding:"required"`
	GuestName    string    `json:"guest_name" binding:"required"`
	GuestCount   int       `json:"guest_count" binding:"required,min=1"`
	Channel      string    `json:"channel"`
	Status       string    `json:"status"`
	TotalCents   int64     `json:"total_cents"`
	Currency     string    `json:"currency"`
	Notes        string    `json:"notes"`
}

// UpdateBookingRequest is a partial update; nil fields keep their current value.
type UpdateBookingRequest struct {
	PropertyID   *uuid.UUID `json:"property_id"`
	CheckInDate  *string    `json:"check_in_date"`
	CheckOutDate *string    `json:"check_out_date"`
	GuestName    *string    `json:"guest_name"`
	GuestCount   *int       `json:"guest_count"`
	Channel      *string    `json:"channel"`
	Notes        *string    `json:"notes"`
	Status       *string    `json:"status"`
	TotalCents   *int64     `json:"total_cents"`
	Currency     *string    `json:"currency"`
	CancelReason *string    `json:"cancel_reason"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	Reference     string     `json:"reference"`
	PropertyID    uuid.UUID  `json:"property_id"`
	CheckInDate   string     `json:"check_in_date"`
	CheckOutDate  string     `json:"check_out_date"`
	GuestName     string     `json:"guest_name"`
	GuestCount    int        `json:"guest_count"`
	Channel       string     `json:"channel,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	TotalCents    int64      `json:"total_cents"`
	Currency      string     `json:"currency"`
	InvoiceID     *uuid.UUID `json:"invoice_id,omitempty"`
	CancelReason  string     `json:"cancel_reason,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingResult is the outcome of a mutating operation: the committed booking
// plus warnings from failed secondary effects (partial success).
type BookingResult struct {
	Booking  BookingDTO `json:"booking"`
	Warnings []string   `json:"warnings,omitempty"`
}

// BookingService orchestrates the booking lifecycle: permission gating,
// conflict checking, persistence, optimistic list-cache mutation with
// rollback, and post-commit side effects.
type BookingService struct {
	repo        bookingDomain.Repository
	properties  propertyDomain.Repository
	perms       domain.PermissionOracle
	notifier    Notifier
	invoices    InvoiceGenerator
	invalidator cache.Invalidator
	listCache   *cache.ListCache[BookingDTO]
	logger      *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	properties propertyDomain.Repository,
	perms domain.PermissionOracle,
	notifier Notifier,
	invoices InvoiceGenerator,
	invalidator cache.Invalidator,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:        repo,
		properties:  properties,
		perms:       perms,
		notifier:    notifier,
		invoices:    invoices,
		invalidator: invalidator,
		listCache:   cache.NewListCache[BookingDTO](),
		logger:      logger,
	}
}

// ListCache exposes the optimistic bookings list projection.
func (s *BookingService) ListCache() *cache.ListCache[BookingDTO] {
	return s.listCache
}

// HasConflict reports whether any active (non-cancelled) booking on the
// property overlaps the period under the inclusive test. The booking
// identified by exclude is skipped so an edited booking does not conflict
// with itself. A query failure propagates: the check neither fails open nor
// fails closed.
func (s *BookingService) HasConflict(ctx context.Context, propertyID uuid.UUID, period bookingDomain.StayPeriod, exclude uuid.UUID) (bool, error) {
	candidates, err := s.repo.FindActiveInPeriod(ctx, propertyID, period)
	if err != nil {
		return false, fmt.Errorf("conflict check failed: %w", err)
	}
	conflicts := bookingDomain.ConflictingBookings(candidates, period, exclude)
	return len(conflicts) > 0, nil
}

// CheckAvailability reports whether the property is free for the given dates.
func (s *BookingService) CheckAvailability(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut string) (bool, error) {
	period, err := bookingDomain.ParseStayPeriod(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	conflict, err := s.HasConflict(ctx, propertyID, period, uuid.Nil)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// CreateBooking creates a new booking on behalf of the actor.
//
// Order of guarantees: permission check, then conflict check, then persist.
// Nothing is written and no side effect fires before both checks pass. Side
// effects after the commit (notification, invoice auto-generation) are
// best-effort; their failures come back as warnings.
func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*BookingResult, error) {
	if !s.perms.Allows(actor, domain.CapBookingCreate) {
		return nil, domain.NewAuthorizationError(domain.CapBookingCreate)
	}

	period, err := bookingDomain.ParseStayPeriod(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	status := bookingDomain.BookingStatus(req.Status)
	if req.Status == "" {
		status = bookingDomain.StatusPending
	}

	conflict, err := s.HasConflict(ctx, req.PropertyID, period, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.NewConflictError(msgAlreadyBooked)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	bk, err := bookingDomain.NewBooking(
		req.PropertyID,
		period,
		req.GuestName,
		req.GuestCount,
		req.Channel,
		status,
		req.TotalCents,
		currency,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	// Optimistic insert: the list view reflects the booking before the write
	// lands; the snapshot is restored verbatim if the write fails.
	snapshot := s.listCache.Snapshot()
	s.listCache.Insert(toBookingDTO(bk))

	if err := s.repo.Save(ctx, bk); err != nil {
		s.listCache.Rollback(snapshot)
		return nil, err
	}

	propertyName := s.propertyName(ctx, bk.PropertyID())
	warnings := s.runEffects(ctx, []effect{
		{name: "booking-created notification", run: func(ctx context.Context) error {
			return s.notifier.BookingCreated(ctx, bk, propertyName, actor)
		}},
		{name: "invoice generation", run: func(ctx context.Context) error {
			inv, err := s.invoices.CreateFromBooking(ctx, bk.ID())
			if err != nil {
				return err
			}
			// The generator persisted the linkage against its own copy of the
			// row with a version bump; mirror both here so the returned state
			// and the list projection match storage.
			bk.AttachInvoice(inv.ID())
			bk.IncrementVersion()
			s.patchListCache(bk)
			return nil
		}},
	})

	warnings = append(warnings, s.invalidateBookingViews(ctx, bk.PropertyID())...)

	result := BookingResult{Booking: toBookingDTO(bk), Warnings: warnings}
	return &result, nil
}

// UpdateBooking applies a partial update. When dates or the property change,
// the merged values are re-checked for conflicts excluding the booking's own
// id before anything is written.
func (s *BookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id uuid.UUID, req UpdateBookingRequest) (*BookingResult, error) {
	if !s.perms.Allows(actor, domain.CapBookingEdit) {
		return nil, domain.NewAuthorizationError(domain.CapBookingEdit)
	}

	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := bk.Status()
	previousProperty := bk.PropertyID()

	if req.PropertyID != nil || req.CheckInDate != nil || req.CheckOutDate != nil {
		// Merge the partial values over the current ones, then re-check.
		targetProperty := bk.PropertyID()
		if req.PropertyID != nil {
			targetProperty = *req.PropertyID
		}
		checkIn := bk.Period().CheckIn.Format(bookingDomain.DateLayout)
		if req.CheckInDate != nil {
			checkIn = *req.CheckInDate
		}
		checkOut := bk.Period().CheckOut.Format(bookingDomain.DateLayout)
		if req.CheckOutDate != nil {
			checkOut = *req.CheckOutDate
		}

		period, err := bookingDomain.ParseStayPeriod(checkIn, checkOut)
		if err != nil {
			return nil, err
		}

		conflict, err := s.HasConflict(ctx, targetProperty, period, bk.ID())
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, domain.NewConflictError(msgAlreadyBooked)
		}

		if targetProperty != bk.PropertyID() {
			if err := bk.MoveToProperty(targetProperty); err != nil {
				return nil, err
			}
		}
		if err := bk.Reschedule(period); err != nil {
			return nil, err
		}
	}

	if req.GuestName != nil || req.GuestCount != nil || req.Channel != nil || req.Notes != nil {
		guestName := bk.GuestName()
		if req.GuestName != nil {
			guestName = *req.GuestName
		}
		guestCount := bk.GuestCount()
		if req.GuestCount != nil {
			guestCount = *req.GuestCount
		}
		channel := bk.Channel()
		if req.Channel != nil {
			channel = *req.Channel
		}
		notes := bk.Notes()
		if req.Notes != nil {
			notes = *req.Notes
		}
		if err := bk.UpdateGuestDetails(guestName, guestCount, channel, notes); err != nil {
			return nil, err
		}
	}

	if req.TotalCents != nil || req.Currency != nil {
		totalCents := bk.TotalCents()
		if req.TotalCents != nil {
			totalCents = *req.TotalCents
		}
		currency := ""
		if req.Currency != nil {
			currency = *req.Currency
		}
		if err := bk.UpdateTotal(totalCents, currency); err != nil {
			return nil, err
		}
	}

	if req.Status != nil {
		newStatus, err := bookingDomain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		if newStatus == bookingDomain.StatusCancelled {
			reason := ""
			if req.CancelReason != nil {
				reason = *req.CancelReason
			}
			bk.Cancel(reason)
		} else if err := bk.ChangeStatus(newStatus); err != nil {
			return nil, err
		}
	}

	snapshot := s.listCache.Snapshot()
	s.patchListCache(bk)

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		s.listCache.Rollback(snapshot)
		return nil, err
	}

	warnings := s.runEffects(ctx, s.statusChangeEffects(bk, oldStatus, actor))

	// A move between properties leaves projections of the old property stale
	// too, so both sides get invalidated.
	propertyIDs := []uuid.UUID{bk.PropertyID()}
	if previousProperty != bk.PropertyID() {
		propertyIDs = append(propertyIDs, previousProperty)
	}
	warnings = append(warnings, s.invalidateBookingViews(ctx, propertyIDs...)...)

	result := BookingResult{Booking: toBookingDTO(bk), Warnings: warnings}
	return &result, nil
}

// CancelBooking soft-cancels a booking: the row is updated in place, never
// deleted, and stops participating in conflict detection. Cancelling an
// already-cancelled booking is an idempotent no-op.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*BookingResult, error) {
	if !s.perms.Allows(actor, domain.CapBookingCancel) {
		return nil, domain.NewAuthorizationError(domain.CapBookingCancel)
	}

	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if bk.Status().IsCancelled() {
		result := BookingResult{Booking: toBookingDTO(bk)}
		return &result, nil
	}

	bk.Cancel(reason)

	snapshot := s.listCache.Snapshot()
	s.patchListCache(bk)

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		s.listCache.Rollback(snapshot)
		return nil, err
	}

	propertyName := s.propertyName(ctx, bk.PropertyID())
	warnings := s.runEffects(ctx, []effect{
		{name: "booking-cancelled notification", run: func(ctx context.Context) error {
			return s.notifier.BookingCancelled(ctx, bk, propertyName, actor, reason)
		}},
	})
	warnings = append(warnings, s.invalidateBookingViews(ctx, bk.PropertyID())...)

	result := BookingResult{Booking: toBookingDTO(bk), Warnings: warnings}
	return &result, nil
}

// MarkInvoicePaid records a settled invoice on its booking. Driven by the
// invoice.paid event consumer, not by a user action, so no permission gate.
func (s *BookingService) MarkInvoicePaid(ctx context.Context, bookingID, invoiceID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if bk.InvoiceID() == nil {
		bk.AttachInvoice(invoiceID)
	}
	bk.MarkPaid()
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return err
	}

	if err := s.invalidator.Invalidate(ctx,
		cache.KeyBookingsList(),
		cache.KeyBookingsByProperty(bk.PropertyID()),
		cache.KeyInvoices(),
		cache.KeyFinancialSummary(),
	); err != nil {
		s.logger.Warn("view invalidation failed after payment", zap.Error(err))
	}
	return nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetPropertyBookings retrieves paginated bookings for one property.
func (s *BookingService) GetPropertyBookings(ctx context.Context, propertyID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.FindByProperty(ctx, propertyID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// GetCalendar retrieves all bookings touching the given date window.
func (s *BookingService) GetCalendar(ctx context.Context, from, to string) ([]BookingDTO, error) {
	fromDate, err := time.Parse(bookingDomain.DateLayout, from)
	if err != nil {
		return nil, domain.NewValidationError("invalid from date: " + from)
	}
	toDate, err := time.Parse(bookingDomain.DateLayout, to)
	if err != nil {
		return nil, domain.NewValidationError("invalid to date: " + to)
	}
	bookings, err := s.repo.FindInCalendarRange(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListAllBookings returns a paginated list of all bookings. The first page
// refreshes the optimistic list projection with server-confirmed data,
// superseding any provisional entries.
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	dtos := toBookingDTOs(bookings)
	if page == 1 {
		s.listCache.Replace(dtos)
	}
	return dtos, total, nil
}

// BookingStatsDTO holds booking statistics for the back-office dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetBookingStats returns aggregate booking statistics.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// statusChangeEffects builds the post-commit notification (and auto-invoice)
// effects for a status transition. A move to confirmed generates an invoice
// when none is linked yet and emits the dedicated confirmed notification; a
// move to cancelled emits the reason-carrying cancelled notification; any
// other change emits the generic status-changed notification.
func (s *BookingService) statusChangeEffects(bk *bookingDomain.Booking, oldStatus bookingDomain.BookingStatus, actor domain.Actor) []effect {
	newStatus := bk.Status()
	if newStatus == oldStatus {
		return nil
	}

	var effects []effect
	switch newStatus {
	case bookingDomain.StatusConfirmed:
		if bk.InvoiceID() == nil {
			effects = append(effects, effect{name: "invoice generation", run: func(ctx context.Context) error {
				inv, err := s.invoices.CreateFromBooking(ctx, bk.ID())
				if err != nil {
					return err
				}
				bk.AttachInvoice(inv.ID())
				bk.IncrementVersion()
				s.patchListCache(bk)
				return nil
			}})
		}
		effects = append(effects, effect{name: "booking-confirmed notification", run: func(ctx context.Context) error {
			return s.notifier.BookingConfirmed(ctx, bk, s.propertyName(ctx, bk.PropertyID()), actor)
		}})
	case bookingDomain.StatusCancelled:
		effects = append(effects, effect{name: "booking-cancelled notification", run: func(ctx context.Context) error {
			return s.notifier.BookingCancelled(ctx, bk, s.propertyName(ctx, bk.PropertyID()), actor, bk.CancelReason())
		}})
	default:
		effects = append(effects, effect{name: "status-changed notification", run: func(ctx context.Context) error {
			return s.notifier.BookingStatusChanged(ctx, bk, s.propertyName(ctx, bk.PropertyID()), oldStatus, newStatus, actor)
		}})
	}
	return effects
}

// invalidateBookingViews drops every cached projection a booking mutation can
// affect, including the per-property views of each given property. The
// projections are independent caches of the same store, so missing one here
// means a stale view.
func (s *BookingService) invalidateBookingViews(ctx context.Context, propertyIDs ...uuid.UUID) []string {
	keys := []cache.Key{
		cache.KeyBookingsList(),
		cache.KeyBookingsCalendar(),
		cache.KeyPropertiesList(),
		cache.KeyInvoices(),
		cache.KeyFinancialSummary(),
	}
	for _, id := range propertyIDs {
		keys = append(keys, cache.KeyBookingsByProperty(id), cache.KeyProperty(id))
	}
	err := s.invalidator.Invalidate(ctx, keys...)
	if err != nil {
		s.logger.Warn("view invalidation failed", zap.Error(err))
		return []string{"view invalidation: " + err.Error()}
	}
	return nil
}

// propertyName resolves the property name for notification payloads. Lookup
// failure degrades to an empty name rather than failing the operation.
func (s *BookingService) propertyName(ctx context.Context, propertyID uuid.UUID) string {
	prop, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		s.logger.Warn("property name lookup failed",
			zap.String("property_id", propertyID.String()),
			zap.Error(err),
		)
		return ""
	}
	return prop.Name
}

// patchListCache applies the booking's current state to the optimistic list
// projection.
func (s *BookingService) patchListCache(bk *bookingDomain.Booking) {
	dto := toBookingDTO(bk)
	s.listCache.Patch(
		func(item BookingDTO) bool { return item.ID == dto.ID },
		func(item *BookingDTO) { *item = dto },
	)
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		Reference:     bk.Reference(),
		PropertyID:    bk.PropertyID(),
		CheckInDate:   bk.Period().CheckIn.Format(bookingDomain.DateLayout),
		CheckOutDate:  bk.Period().CheckOut.Format(bookingDomain.DateLayout),
		GuestName:     bk.GuestName(),
		GuestCount:    bk.GuestCount(),
		Channel:       bk.Channel(),
		Status:        bk.Status().String(),
		PaymentStatus: string(bk.PaymentStatus()),
		TotalCents:    bk.TotalCents(),
		Currency:      bk.Currency(),
		InvoiceID:     bk.InvoiceID(),
		CancelReason:  bk.CancelReason(),
		Notes:         bk.Notes(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
