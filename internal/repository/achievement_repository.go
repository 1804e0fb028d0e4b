package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/syncup-app/achievements/internal/models"
)

// AchievementRepository handles catalog and unlock record storage.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Upsert inserts a definition or refreshes the display fields of the one with the same key.
func (r *AchievementRepository) Upsert(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "metric",
				"requirement_kind", "requirement_value", "icon", "updated_at",
			}),
		}).
		Create(achievement).Error
}

// GetAll retrieves the whole catalog in a stable order.
func (r *AchievementRepository) GetAll(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.WithContext(ctx).Order("id ASC").Find(&achievements).Error
	return achievements, err
}

// GetUserUnlocks retrieves every unlock record of a user.
func (r *AchievementRepository) GetUserUnlocks(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&unlocks).Error
	return unlocks, err
}

// GetUserUnlock retrieves a single unlock record.
func (r *AchievementRepository) GetUserUnlock(ctx context.Context, userID, achievementID uint) (*models.UserAchievement, error) {
	var unlock models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&unlock).Error
	if err != nil {
		return nil, err
	}
	return &unlock, nil
}

// CreateUnlock inserts an unlock record. It reports false without error when the
// (user, achievement) pair already exists, so concurrent evaluations are harmless.
func (r *AchievementRepository) CreateUnlock(ctx context.Context, unlock *models.UserAchievement) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(unlock)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
