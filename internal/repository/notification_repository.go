package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/syncup-app/achievements/internal/models"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser returns the most recent notifications of a user, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a notification of the given user as read. It returns
// gorm.ErrRecordNotFound when no such notification belongs to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
