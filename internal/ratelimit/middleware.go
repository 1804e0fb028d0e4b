package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	prommetrics "github.com/syncup-app/achievements/internal/metrics"
	"github.com/syncup-app/achievements/pkg/logger"
)

// Allower is satisfied by *Limiter.
type Allower interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KeyFunc extracts the rate limit key from a request. An empty key skips limiting.
type KeyFunc func(c *gin.Context) string

// Middleware rejects requests over the limit with 429. Limiter errors let the
// request through so a Redis outage does not take the API down.
func Middleware(limiter Allower, keyFn KeyFunc, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			prommetrics.RecordRateLimitRejection()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "rate limit exceeded",
				"timestamp": time.Now().UTC(),
			})
			return
		}

		c.Next()
	}
}
