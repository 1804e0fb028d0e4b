package models

import "time"

// NotificationType identifies what produced a notification.
type NotificationType string

// NotificationAchievementUnlocked is written when a user unlocks an achievement.
const NotificationAchievementUnlocked NotificationType = "achievement_unlocked"

// Notification is an in-app banner shown to a user.
type Notification struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"not null;index" json:"user_id"`
	Type           NotificationType `gorm:"size:40;not null" json:"type"`
	Title          string           `gorm:"size:255;not null" json:"title"`
	Message        string           `gorm:"type:text" json:"message"`
	Icon           string           `gorm:"size:50" json:"icon"`
	AchievementKey string           `gorm:"size:100" json:"achievement_key,omitempty"`
	Read           bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TableName specifies the table name for Notification model.
func (Notification) TableName() string {
	return "notifications"
}
