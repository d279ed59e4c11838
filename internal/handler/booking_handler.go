package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayops/service-booking/internal/application"
	"github.com/stayops/service-booking/internal/auth"
	"github.com/stayops/service-booking/internal/middleware"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service  *application.BookingService
	invoices *application.InvoiceService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, invoices *application.InvoiceService) *BookingHandler {
	return &BookingHandler{service: service, invoices: invoices}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.Auth(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/calendar", h.Calendar)
		bookings.GET("/availability", h.CheckAvailability)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/invoice", h.GetInvoice)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	properties := r.Group("/api/v1/properties")
	properties.Use(authMW)
	{
		properties.GET("/:id/bookings", h.PropertyBookings)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, result)
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit := pagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		Error(c, err)
		return
	}

	Paginated(c, bookings, total, page, limit)
}

// Calendar handles GET /api/v1/bookings/calendar?from=...&to=...
func (h *BookingHandler) Calendar(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		BadRequest(c, "from and to query parameters are required")
		return
	}

	bookings, err := h.service.GetCalendar(c.Request.Context(), from, to)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, bookings)
}

// CheckAvailability handles GET /api/v1/bookings/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Query("property_id"))
	if err != nil {
		BadRequest(c, "invalid property_id")
		return
	}
	checkIn := c.Query("check_in_date")
	checkOut := c.Query("check_out_date")
	if checkIn == "" || checkOut == "" {
		BadRequest(c, "check_in_date and check_out_date query parameters are required")
		return
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), propertyID, checkIn, checkOut)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{"available": available})
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid booking id")
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, booking)
}

// GetInvoice handles GET /api/v1/bookings/:id/invoice.
func (h *BookingHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid booking id")
		return
	}

	inv, err := h.invoices.GetByBooking(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{
		"id":           inv.ID(),
		"number":       inv.Number(),
		"booking_id":   inv.BookingID(),
		"amount_cents": inv.AmountCents(),
		"currency":     inv.Currency(),
		"status":       inv.Status(),
		"issued_at":    inv.IssuedAt(),
		"paid_at":      inv.PaidAt(),
	})
}

// UpdateBooking handles PATCH /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid booking id")
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), actor, id, req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid booking id")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.CancelBooking(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// PropertyBookings handles GET /api/v1/properties/:id/bookings.
func (h *BookingHandler) PropertyBookings(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid property id")
		return
	}
	page, limit := pagination(c)

	bookings, total, err := h.service.GetPropertyBookings(c.Request.Context(), propertyID, page, limit)
	if err != nil {
		Error(c, err)
		return
	}

	Paginated(c, bookings, total, page, limit)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
