package catalog

import (
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
		public.GET("/venues", h.ListVenues)
		public.GET("/venues/:id", h.GetVenue)
		public.GET("/sports", h.ListSports)
		public.GET("/courts", h.ListCourts)
		public.GET("/courts/:id", h.GetCourt)
	}
	if protected != nil {
		protected.POST("/venues", h.CreateVenue)
		protected.PATCH("/venues/:id/active", h.SetVenueActive)
		protected.POST("/sports", h.CreateSport)
		protected.DELETE("/sports/:id", h.DeleteSport)
		protected.POST("/courts", h.CreateCourt)
		protected.PUT("/courts/:id", h.UpdateCourt)
		protected.POST("/courts/:id/deactivate", h.DeactivateCourt)
		protected.DELETE("/courts/:id", h.DeleteCourt)
		protected.GET("/courts/:id/stats", h.CourtStats)
	}
}

func (h *Handler) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	userID := c.GetInt64("user_id")
	role := c.GetString("user_role")
	if role != string(domain.RoleVenueOwner) && role != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Venue owner role required")
		return
	}

	v, err := h.svc.CreateVenue(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create venue")
		return
	}
	response.Success(c, http.StatusCreated, v)
}

func (h *Handler) GetVenue(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid venue ID")
		return
	}
	v, err := h.svc.GetVenue(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Venue not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load venue")
		return
	}
	response.Success(c, http.StatusOK, v)
}

func (h *Handler) ListVenues(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	venues, err := h.svc.ListVenues(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list venues")
		return
	}
	response.Success(c, http.StatusOK, venues)
}

func (h *Handler) SetVenueActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid venue ID")
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	err = h.svc.SetVenueActive(c.Request.Context(), c.GetInt64("user_id"), id, h.isAdmin(c), *req.Active)
	if err != nil {
		h.writeGuardError(c, err, "Failed to update venue")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "active": *req.Active})
}

func (h *Handler) CreateSport(c *gin.Context) {
	if !h.isAdmin(c) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}
	var req CreateSportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	sp, err := h.svc.CreateSport(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create sport")
		return
	}
	response.Success(c, http.StatusCreated, sp)
}

func (h *Handler) ListSports(c *gin.Context) {
	sports, err := h.svc.ListSports(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sports")
		return
	}
	response.Success(c, http.StatusOK, sports)
}

func (h *Handler) DeleteSport(c *gin.Context) {
	if !h.isAdmin(c) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid sport ID")
		return
	}

	if err := h.svc.DeleteSport(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeGuardError(c, err, "Failed to delete sport")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) CreateCourt(c *gin.Context) {
	var req CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	court, err := h.svc.CreateCourt(c.Request.Context(), c.GetInt64("user_id"), h.isAdmin(c), req)
	if err != nil {
		h.writeGuardError(c, err, "Failed to create court")
		return
	}
	response.Success(c, http.StatusCreated, court)
}

func (h *Handler) UpdateCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}
	var req UpdateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	court, err := h.svc.UpdateCourt(c.Request.Context(), c.GetInt64("user_id"), id, h.isAdmin(c), req)
	if err != nil {
		h.writeGuardError(c, err, "Failed to update court")
		return
	}
	response.Success(c, http.StatusOK, court)
}

func (h *Handler) GetCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}
	court, err := h.svc.GetCourt(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Court not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load court")
		return
	}
	response.Success(c, http.StatusOK, court)
}

func (h *Handler) ListCourts(c *gin.Context) {
	var q CourtListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}

	courts, total, err := h.svc.ListCourts(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list courts")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": courts, "total": total})
}

func (h *Handler) DeactivateCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}
	if err := h.svc.DeactivateCourt(c.Request.Context(), c.GetInt64("user_id"), id, h.isAdmin(c)); err != nil {
		h.writeGuardError(c, err, "Failed to deactivate court")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "active": false})
}

func (h *Handler) DeleteCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}
	if err := h.svc.DeleteCourt(c.Request.Context(), c.GetInt64("user_id"), id, h.isAdmin(c)); err != nil {
		h.writeGuardError(c, err, "Failed to delete court")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) CourtStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}

	stats, err := h.svc.CourtStats(c.Request.Context(), c.GetInt64("user_id"), id, h.isAdmin(c),
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		h.writeGuardError(c, err, "Failed to load stats")
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) isAdmin(c *gin.Context) bool {
	return c.GetString("user_role") == string(domain.RoleAdmin)
}

func (h *Handler) writeGuardError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrHasActiveBookings):
		response.Error(c, http.StatusConflict, "HAS_ACTIVE_BOOKINGS", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
