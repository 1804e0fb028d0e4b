// Package achievements provides REST API handlers for the achievement view and catalog.
package achievements

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/syncup-app/achievements/internal/api/middleware"
	"github.com/syncup-app/achievements/internal/models"
	achsvc "github.com/syncup-app/achievements/internal/service/achievements"
	"github.com/syncup-app/achievements/pkg/logger"
)

// retryAfterSeconds is sent with 503 responses for transient store failures.
const retryAfterSeconds = 5

// AchievementService interface for achievement operations.
type AchievementService interface {
	GetAchievements(ctx context.Context, userID uint) ([]achsvc.View, error)
	GetCatalog(ctx context.Context) ([]models.Achievement, error)
}

// Handler handles achievement API requests.
type Handler struct {
	service AchievementService
	log     *logger.Logger
}

// NewHandler creates a new achievements handler.
func NewHandler(service *achsvc.Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewHandlerWithInterfaces creates a new achievements handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(service AchievementService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetMyAchievements returns every achievement with the caller's progress and unlock state.
// GET /api/v1/achievements.
func (h *Handler) GetMyAchievements(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	views, err := h.service.GetAchievements(c.Request.Context(), userID)
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve achievements")
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get achievements")
		return
	}

	earned := 0
	for _, v := range views {
		if v.Earned {
			earned++
		}
	}

	h.log.Debug().
		Uint("user_id", userID).
		Int("total", len(views)).
		Int("earned", earned).
		Msg("Retrieved achievements")

	c.JSON(http.StatusOK, gin.H{
		"achievements": views,
		"total":        len(views),
		"earned_count": earned,
		"generated_at": time.Now().UTC(),
	})
}

// GetCatalog returns all achievement definitions.
// GET /api/v1/achievements/catalog.
func (h *Handler) GetCatalog(c *gin.Context) {
	defs, err := h.service.GetCatalog(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve achievement catalog")
		h.log.Error().Err(err).Msg("Failed to get achievement catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": defs,
		"total":        len(defs),
		"generated_at": time.Now().UTC(),
	})
}

func (h *Handler) serviceError(c *gin.Context, err error, message string) {
	if achsvc.IsRetryable(err) {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		h.errorResponse(c, http.StatusServiceUnavailable, "Achievements are temporarily unavailable, please retry")
		return
	}
	h.errorResponse(c, http.StatusInternalServerError, message)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
