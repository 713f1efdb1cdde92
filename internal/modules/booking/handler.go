package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"courtbook/internal/domain"
	"courtbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/courts/:id/availability", h.GetAvailability)
		public.GET("/courts/:id/availability/range", h.GetAvailabilityRange)
	}
	if protected != nil {
		protected.POST("/bookings", h.Create)
		protected.GET("/bookings", h.ListMine)
		protected.GET("/bookings/:id", h.Get)
		protected.POST("/bookings/:id/cancel", h.Cancel)
		protected.POST("/bookings/:id/confirm", h.Confirm)
		protected.POST("/bookings/:id/pay", h.MarkPaid)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrCourtNotFound):
			response.Error(c, http.StatusNotFound, "COURT_NOT_FOUND", err.Error())
		case errors.Is(err, ErrConflict):
			response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create booking")
		}
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
		return
	}

	userID := c.GetInt64("user_id")
	if b.UserID != userID && c.GetString("user_role") != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.svc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	userID := c.GetInt64("user_id")
	isAdmin := c.GetString("user_role") == string(domain.RoleAdmin)

	b, err := h.svc.Cancel(c.Request.Context(), id, userID, isAdmin, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
		case errors.Is(err, ErrNotCancellable):
			response.Error(c, http.StatusUnprocessableEntity, "NOT_CANCELLABLE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel booking")
		}
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.svc.Confirm)
}

func (h *Handler) MarkPaid(c *gin.Context) {
	h.transition(c, h.svc.MarkPaid)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id int64) error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}
	if c.GetString("user_role") != string(domain.RoleAdmin) && c.GetString("user_role") != string(domain.RoleVenueOwner) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient role")
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrNotCancellable):
			response.Error(c, http.StatusUnprocessableEntity, "INVALID_STATE", "Booking is not in a valid state")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update booking")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) GetAvailability(c *gin.Context) {
	courtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}
	date := c.Query("date")

	slots, err := h.svc.GetCourtAvailability(c.Request.Context(), courtID, date)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load availability")
		return
	}
	response.Success(c, http.StatusOK, DayAvailability{Date: date, Slots: slots})
}

func (h *Handler) GetAvailabilityRange(c *gin.Context) {
	courtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}

	days, err := h.svc.AvailabilityForRange(c.Request.Context(), courtID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load availability")
		return
	}
	response.Success(c, http.StatusOK, days)
}
