// Package api assembles the HTTP router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syncup-app/achievements/internal/api/achievements"
	"github.com/syncup-app/achievements/internal/api/middleware"
	"github.com/syncup-app/achievements/internal/api/notifications"
	"github.com/syncup-app/achievements/internal/config"
	"github.com/syncup-app/achievements/internal/ratelimit"
	"github.com/syncup-app/achievements/pkg/logger"
)

const healthTimeout = 2 * time.Second

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

// Dependencies are the handlers and infrastructure the router wires together.
type Dependencies struct {
	Achievements  *achievements.Handler
	Notifications *notifications.Handler
	// Limiter is optional; nil disables rate limiting.
	Limiter      ratelimit.Allower
	HealthChecks map[string]HealthCheck
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg *config.Config, deps Dependencies, log *logger.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log.Component("http")))

	router.GET("/health", healthHandler(deps.HealthChecks))

	if cfg.Metrics.Prometheus.Enabled {
		router.GET(cfg.Metrics.Prometheus.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log))
	if deps.Limiter != nil {
		v1.Use(ratelimit.Middleware(deps.Limiter, middleware.UserKey, log))
	}

	v1.GET("/achievements", deps.Achievements.GetMyAchievements)
	v1.GET("/achievements/catalog", deps.Achievements.GetCatalog)
	v1.GET("/notifications", deps.Notifications.List)
	v1.POST("/notifications/:id/read", deps.Notifications.MarkRead)

	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":    overall,
			"checks":    results,
			"timestamp": time.Now().UTC(),
		})
	}
}
