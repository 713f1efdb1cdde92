package schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"courtbook/internal/domain"
	"courtbook/internal/pkg/response"
	"courtbook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts read endpoints publicly and rule/slot management on
// the admin group.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	if public != nil {
		public.GET("/courts/:id/pricing-rules", h.ListRules)
		public.GET("/courts/:id/price", h.PriceFor)
	}
	if admin != nil {
		admin.POST("/pricing-rules", h.CreateRule)
		admin.PUT("/pricing-rules/:id", h.UpdateRule)
		admin.DELETE("/pricing-rules/:id", h.DeactivateRule)
		admin.POST("/courts/:id/slots/generate", h.GenerateSlots)
	}
}

func (h *Handler) ListRules(c *gin.Context) {
	courtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}
	rules, err := h.svc.ListRules(c.Request.Context(), courtID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list rules")
		return
	}
	response.Success(c, http.StatusOK, rules)
}

func (h *Handler) PriceFor(c *gin.Context) {
	courtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}

	price, err := h.svc.PriceFor(c.Request.Context(), courtID, c.Query("date"), c.Query("time"))
	if err != nil {
		h.writeError(c, err, "Failed to resolve price")
		return
	}
	response.Success(c, http.StatusOK, price)
}

func (h *Handler) CreateRule(c *gin.Context) {
	var rule domain.PricingRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if fields := validator.Validate(rule); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pricing rule", fields)
		return
	}
	rule.IsActive = true

	if err := h.svc.CreateRule(c.Request.Context(), &rule); err != nil {
		h.writeError(c, err, "Failed to create rule")
		return
	}
	response.Success(c, http.StatusCreated, rule)
}

func (h *Handler) UpdateRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rule ID")
		return
	}
	var rule domain.PricingRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if fields := validator.Validate(rule); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pricing rule", fields)
		return
	}
	rule.ID = id

	if err := h.svc.UpdateRule(c.Request.Context(), &rule); err != nil {
		h.writeError(c, err, "Failed to update rule")
		return
	}
	response.Success(c, http.StatusOK, rule)
}

func (h *Handler) DeactivateRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rule ID")
		return
	}
	if err := h.svc.DeactivateRule(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to deactivate rule")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "active": false})
}

func (h *Handler) GenerateSlots(c *gin.Context) {
	courtID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid court ID")
		return
	}

	from := c.Query("start_date")
	to := c.Query("end_date")
	if from == "" {
		from = time.Now().UTC().Format(domain.DateLayout)
	}
	if to == "" {
		to = HorizonEnd(time.Now(), 30)
	}

	inserted, err := h.svc.GenerateAndStore(c.Request.Context(), courtID, from, to)
	if err != nil {
		h.writeError(c, err, "Slot generation failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"inserted": inserted, "from": from, "to": to})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadDateRange):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrCourtNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
