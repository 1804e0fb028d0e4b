package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/syncup-app/achievements/internal/models"
)

// LogRepository reads the goal, fitness and finance logs written by the tracker.
// The achievement engine never writes these tables; the Create methods exist for
// fixtures and imports.
type LogRepository struct {
	db *DB
}

// NewLogRepository creates a new log repository.
func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

// ListGoals retrieves every goal of a user.
func (r *LogRepository) ListGoals(ctx context.Context, userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&goals).Error
	return goals, err
}

// ListFitnessTasks retrieves every fitness task of a user.
func (r *LogRepository) ListFitnessTasks(ctx context.Context, userID uint) ([]models.FitnessTask, error) {
	var tasks []models.FitnessTask
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListFinanceLogs retrieves every finance log of a user.
func (r *LogRepository) ListFinanceLogs(ctx context.Context, userID uint) ([]models.FinanceLog, error) {
	var logs []models.FinanceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

// GetMonthlyBudget returns the user's configured monthly spending budget.
// Unknown users have a zero budget.
func (r *LogRepository) GetMonthlyBudget(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id", "monthly_budget").
		Where("id = ?", userID).
		Limit(1).
		Find(&users).Error
	if err != nil {
		return decimal.Zero, err
	}
	if len(users) == 0 {
		return decimal.Zero, nil
	}
	return users[0].MonthlyBudget, nil
}
