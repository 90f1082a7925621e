package handlers

import (
	"net/http"
	"time"

	"tajriba/middleware"
	"tajriba/models"
	"tajriba/services/booking"
	"tajriba/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Svc    booking.BookingService
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// withRetry runs fn and, when it loses an optimistic-concurrency race,
// retries exactly once against the reloaded state. A second loss is
// returned to the client as 409.
func withRetry(fn func() (*models.Booking, error)) (*models.Booking, error) {
	b, err := fn()
	if err != nil && booking.IsCode(err, booking.CodeConcurrentModification) {
		return fn()
	}
	return b, err
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking payload", err.Error())
		return
	}

	b, err := h.Svc.Create(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	b, err := h.Svc.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMyBookingsHandler handles GET /api/bookings.
func (h *BookingHandler) ListMyBookingsHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	bookings, err := h.Svc.ListMine(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ConfirmBookingHandler handles POST /api/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	id := c.Param("id")
	b, err := withRetry(func() (*models.Booking, error) {
		return h.Svc.Confirm(c.Request.Context(), principal, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler handles POST /api/bookings/:id/cancel. The response
// carries the refunded amount so clients can show it without polling the
// payment record.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	id := c.Param("id")
	var refund float64
	b, err := withRetry(func() (*models.Booking, error) {
		booked, amount, cancelErr := h.Svc.Cancel(c.Request.Context(), principal, id)
		refund = amount
		return booked, cancelErr
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "refund_amount": refund})
}

// CompleteBookingHandler handles POST /api/bookings/:id/complete.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	id := c.Param("id")
	b, err := withRetry(func() (*models.Booking, error) {
		return h.Svc.Complete(c.Request.Context(), principal, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DisputeBookingHandler handles POST /api/bookings/:id/dispute.
func (h *BookingHandler) DisputeBookingHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	id := c.Param("id")
	b, err := withRetry(func() (*models.Booking, error) {
		return h.Svc.Dispute(c.Request.Context(), principal, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type resolveDisputeRequest struct {
	Favor string `json:"favor" binding:"required"`
}

// ResolveDisputeHandler handles POST /api/bookings/:id/resolve.
func (h *BookingHandler) ResolveDisputeHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid resolution payload", err.Error())
		return
	}
	var favorTourist bool
	switch req.Favor {
	case "tourist":
		favorTourist = true
	case "host":
		favorTourist = false
	default:
		utils.JSONError(c, http.StatusBadRequest, "favor must be 'tourist' or 'host'", "")
		return
	}

	b, err := h.Svc.ResolveDispute(c.Request.Context(), principal, c.Param("id"), favorTourist)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AvailabilityHandler handles GET /api/services/:id/availability.
func (h *BookingHandler) AvailabilityHandler(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid 'from' timestamp", "expected RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid 'to' timestamp", "expected RFC3339")
		return
	}

	windows, err := h.Svc.Availability(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": windows})
}
