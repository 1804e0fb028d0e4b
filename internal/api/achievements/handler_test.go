//nolint:noctx // Test file uses http.NewRequest for simplicity
package achievements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncup-app/achievements/internal/api/middleware"
	"github.com/syncup-app/achievements/internal/models"
	achsvc "github.com/syncup-app/achievements/internal/service/achievements"
	"github.com/syncup-app/achievements/pkg/logger"
)

type mockAchievementService struct {
	views      map[uint][]achsvc.View
	catalog    []models.Achievement
	err        error
	lastUserID uint
}

func (m *mockAchievementService) GetAchievements(ctx context.Context, userID uint) ([]achsvc.View, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.views[userID], nil
}

func (m *mockAchievementService) GetCatalog(ctx context.Context) ([]models.Achievement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.catalog, nil
}

func setupRouter(svc AchievementService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandlerWithInterfaces(svc, logger.Nop())

	withUser := func(c *gin.Context) {
		if userID != 0 {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	}

	router.GET("/api/v1/achievements", withUser, handler.GetMyAchievements)
	router.GET("/api/v1/achievements/catalog", handler.GetCatalog)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetMyAchievements(t *testing.T) {
	earnedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := &mockAchievementService{
		views: map[uint][]achsvc.View{
			7: {
				{
					ID: 1, Key: "goal_streak_3", Name: "On a Roll", Category: models.CategoryGoal,
					Metric: models.MetricGoalStreak, Requirement: decimal.NewFromInt(3),
					RequirementUnit: models.RequirementStreak, Earned: true, EarnedAt: &earnedAt,
					Progress: decimal.NewFromInt(4),
				},
				{
					ID: 2, Key: "save_1000", Name: "Saver", Category: models.CategoryFinance,
					Metric: models.MetricCumulativeSaved, Requirement: decimal.NewFromInt(1000),
					RequirementUnit: models.RequirementAmount, Progress: decimal.RequireFromString("250.50"),
				},
			},
		},
	}

	w := doGet(setupRouter(svc, 7), "/api/v1/achievements")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), svc.lastUserID)

	var body struct {
		Achievements []map[string]any `json:"achievements"`
		Total        int              `json:"total"`
		EarnedCount  int              `json:"earned_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.EarnedCount)
	require.Len(t, body.Achievements, 2)
	assert.Equal(t, "goal_streak_3", body.Achievements[0]["key"])
	assert.Equal(t, true, body.Achievements[0]["earned"])
	assert.InDelta(t, 250.5, body.Achievements[1]["progress"], 0.001)
}

func TestGetMyAchievements_Errors(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint
		err        error
		wantStatus int
		wantRetry  bool
	}{
		{"no user in context", 0, nil, http.StatusUnauthorized, false},
		{"store unavailable", 7, fmt.Errorf("%w: load catalog: %w", achsvc.ErrUnavailable, errors.New("conn refused")), http.StatusServiceUnavailable, true},
		{"unexpected failure", 7, errors.New("boom"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(setupRouter(&mockAchievementService{err: tt.err}, tt.userID), "/api/v1/achievements")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			if tt.wantRetry {
				assert.Equal(t, "5", w.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestGetCatalog(t *testing.T) {
	svc := &mockAchievementService{catalog: achsvc.DefaultCatalog()}

	w := doGet(setupRouter(svc, 0), "/api/v1/achievements/catalog")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Achievements []struct {
			Key         string             `json:"key"`
			Requirement map[string]float64 `json:"requirement"`
		} `json:"achievements"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, len(svc.catalog), body.Total)
	assert.Equal(t, "goal_streak_3", body.Achievements[0].Key)
	assert.Equal(t, map[string]float64{"streak": 3}, body.Achievements[0].Requirement)
}

func TestGetCatalog_Unavailable(t *testing.T) {
	svc := &mockAchievementService{err: fmt.Errorf("%w: load catalog: %w", achsvc.ErrUnavailable, errors.New("timeout"))}

	w := doGet(setupRouter(svc, 0), "/api/v1/achievements/catalog")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
