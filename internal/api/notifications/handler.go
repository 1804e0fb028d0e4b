// Package notifications provides REST API handlers for in-app notifications.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/syncup-app/achievements/internal/api/middleware"
	"github.com/syncup-app/achievements/internal/models"
	"github.com/syncup-app/achievements/internal/notify"
	"github.com/syncup-app/achievements/pkg/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// NotificationService interface for notification operations.
type NotificationService interface {
	List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
}

// Handler handles notification API requests.
type Handler struct {
	service NotificationService
	log     *logger.Logger
}

// NewHandler creates a new notifications handler.
func NewHandler(service *notify.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new notifications handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service NotificationService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// List returns the caller's notifications, newest first.
// GET /api/v1/notifications?unread=true&limit=50.
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, err := h.parseLimit(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	unreadOnly := false
	if raw := c.Query("unread"); raw != "" {
		unreadOnly, err = strconv.ParseBool(raw)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid unread parameter: %s", raw))
			return
		}
	}

	items, err := h.service.List(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to list notifications")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"total":         len(items),
		"generated_at":  time.Now().UTC(),
	})
}

// MarkRead marks one of the caller's notifications as read.
// POST /api/v1/notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "notification not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Uint("notification_id", id).Msg("Failed to mark notification read")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "read": true})
}

// parseID extracts and validates the notification ID from URL parameters.
func (h *Handler) parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid notification ID: %s", idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}
	if limit > maxLimit {
		return 0, fmt.Errorf("limit cannot exceed %d", maxLimit)
	}
	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
