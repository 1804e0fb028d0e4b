//nolint:noctx // Test file uses http.NewRequest for simplicity
package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncup-app/achievements/pkg/logger"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupLimiter(t *testing.T, window time.Duration, limit int) (*Limiter, *clock, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := &clock{t: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	l, err := New(client, window, limit, WithClock(clk.Now), WithPrefix("test"))
	require.NoError(t, err)
	return l, clk, mr
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	l, clk, _ := setupLimiter(t, time.Minute, 2)
	ctx := context.Background()

	d, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, clk.t.Add(time.Minute), d.ResetAt)
	assert.Equal(t, time.Minute, d.RetryAfter)

	d, err = l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	clk.Advance(20 * time.Second)
	d, err = l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 40*time.Second, d.RetryAfter)
}

func TestLimiter_NewWindowResets(t *testing.T) {
	l, clk, _ := setupLimiter(t, time.Minute, 1)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "user:1")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "user:1")
	assert.False(t, d.Allowed)

	clk.Advance(time.Minute)

	d, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _, _ := setupLimiter(t, time.Minute, 1)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "user:1")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "user:2")
	assert.True(t, d.Allowed)
}

func TestLimiter_SetsExpiry(t *testing.T) {
	l, clk, mr := setupLimiter(t, time.Minute, 5)

	_, err := l.Allow(context.Background(), "user:9")
	require.NoError(t, err)

	key := "test:user:9:" + strconv.FormatInt(clk.t.Truncate(time.Minute).Unix(), 10)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 2*time.Minute, mr.TTL(key))
}

func TestLimiter_RedisDown(t *testing.T) {
	l, _, mr := setupLimiter(t, time.Minute, 5)
	mr.Close()

	_, err := l.Allow(context.Background(), "user:1")
	assert.Error(t, err)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(nil, 0, 1)
	assert.Error(t, err)
	_, err = New(nil, time.Second, 0)
	assert.Error(t, err)
}

type stubAllower struct {
	decision Decision
	err      error
}

func (s stubAllower) Allow(context.Context, string) (Decision, error) {
	return s.decision, s.err
}

func serve(mw gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fixedKey(c *gin.Context) string { return "user:1" }

func TestMiddleware(t *testing.T) {
	reset := time.Now().Add(30 * time.Second)

	t.Run("allowed", func(t *testing.T) {
		w := serve(Middleware(stubAllower{decision: Decision{Allowed: true, Limit: 10, Remaining: 9, ResetAt: reset}}, fixedKey, logger.Nop()))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejected", func(t *testing.T) {
		// ResetAt is far in the past on the wall clock; Retry-After follows the limiter's clock.
		decision := Decision{Allowed: false, Limit: 10, ResetAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), RetryAfter: 42500 * time.Millisecond}
		w := serve(Middleware(stubAllower{decision: decision}, fixedKey, logger.Nop()))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "43", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate limit exceeded")
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		w := serve(Middleware(stubAllower{err: errors.New("redis down")}, fixedKey, logger.Nop()))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty key skips", func(t *testing.T) {
		w := serve(Middleware(stubAllower{decision: Decision{Allowed: false}}, func(*gin.Context) string { return "" }, logger.Nop()))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
