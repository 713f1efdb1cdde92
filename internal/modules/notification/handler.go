package notification

import (
	"errors"
	"net/http"
	"strconv"

	"courtbook/internal/domain"
	"courtbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	dispatcher *Dispatcher
	registry   *Registry
}

func NewHandler(dispatcher *Dispatcher, registry *Registry) *Handler {
	return &Handler{dispatcher: dispatcher, registry: registry}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	{
		g.POST("/dispatch", h.Dispatch)
		g.POST("/:id/retry", h.Retry)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
	}

	t := protected.Group("/device-tokens")
	{
		t.POST("", h.RegisterToken)
		t.DELETE("", h.RemoveToken)
		t.GET("", h.ListTokens)
	}
}

func (h *Handler) Dispatch(c *gin.Context) {
	if h.dispatcher == nil {
		response.Error(c, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push delivery is not configured")
		return
	}
	if c.GetString("user_role") != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}

	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.dispatcher.Dispatch(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrNoTargets):
			response.Error(c, http.StatusUnprocessableEntity, "NO_TARGETS", err.Error())
		default:
			response.Error(c, http.StatusBadGateway, "DELIVERY_FAILED", "Push delivery failed")
		}
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Retry re-runs delivery for a job that is still pending, rebuilding the
// message from the stored row.
func (h *Handler) Retry(c *gin.Context) {
	if h.dispatcher == nil {
		response.Error(c, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push delivery is not configured")
		return
	}
	if c.GetString("user_role") != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	res, err := h.dispatcher.Execute(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		case errors.Is(err, ErrNotPending):
			response.Error(c, http.StatusConflict, "NOT_PENDING", err.Error())
		case errors.Is(err, ErrNoTargets):
			response.Error(c, http.StatusUnprocessableEntity, "NO_TARGETS", err.Error())
		default:
			response.Error(c, http.StatusBadGateway, "DELIVERY_FAILED", "Push delivery failed")
		}
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Get exposes the job's progressive counters so callers can poll mid-flight.
func (h *Handler) Get(c *gin.Context) {
	if h.dispatcher == nil {
		response.Error(c, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push delivery is not configured")
		return
	}
	if c.GetString("user_role") != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	job, err := h.dispatcher.GetJob(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"notification": job,
		"success_rate": job.SuccessRate(),
	})
}

func (h *Handler) List(c *gin.Context) {
	if h.dispatcher == nil {
		response.Error(c, http.StatusServiceUnavailable, "PUSH_DISABLED", "Push delivery is not configured")
		return
	}
	if c.GetString("user_role") != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.dispatcher.ListJobs(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list notifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) RegisterToken(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	dt, err := h.registry.Register(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register token")
		return
	}
	response.Success(c, http.StatusOK, dt)
}

func (h *Handler) RemoveToken(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req RemoveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.registry.Remove(c.Request.Context(), userID, req.Token); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Token not registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove token")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) ListTokens(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	tokens, err := h.registry.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tokens")
		return
	}
	response.Success(c, http.StatusOK, tokens)
}
