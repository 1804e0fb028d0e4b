package notify

import (
	"context"
	"errors"
	"fmt"

	prommetrics "github.com/syncup-app/achievements/internal/metrics"
	"github.com/syncup-app/achievements/internal/models"
	"github.com/syncup-app/achievements/internal/repository"
	"github.com/syncup-app/achievements/internal/service/achievements"
	"github.com/syncup-app/achievements/pkg/logger"
)

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
}

// WebhookSender delivers unlock events to an external chat channel.
type WebhookSender interface {
	SendAchievementUnlocked(ctx context.Context, event achievements.UnlockEvent) error
}

// Service fans unlock events out to the in-app store and the webhook.
// Delivery is best effort; nothing is retried.
type Service struct {
	store   NotificationStore
	webhook WebhookSender
	log     *logger.Logger
}

// NewService creates a new notification service. Either sink may be nil to disable it.
func NewService(store *repository.NotificationRepository, webhook *WebhookClient, log *logger.Logger) *Service {
	s := &Service{log: log}
	if store != nil {
		s.store = store
	}
	if webhook != nil && webhook.Enabled() {
		s.webhook = webhook
	}
	return s
}

// NewServiceWithInterfaces creates a new notification service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(store NotificationStore, webhook WebhookSender, log *logger.Logger) *Service {
	return &Service{store: store, webhook: webhook, log: log}
}

// AchievementUnlocked records an in-app notification and posts to the webhook.
// Both sinks are attempted; their errors are joined.
func (s *Service) AchievementUnlocked(ctx context.Context, event achievements.UnlockEvent) error {
	var errs []error

	if s.store != nil {
		n := &models.Notification{
			UserID:         event.UserID,
			Type:           models.NotificationAchievementUnlocked,
			Title:          fmt.Sprintf("Achievement unlocked: %s", event.Name),
			Message:        event.Description,
			Icon:           event.Icon,
			AchievementKey: event.Key,
		}
		if err := s.store.Create(ctx, n); err != nil {
			prommetrics.RecordNotification("in_app", "error")
			errs = append(errs, fmt.Errorf("in-app notification: %w", err))
		} else {
			prommetrics.RecordNotification("in_app", "success")
		}
	}

	if s.webhook != nil {
		if err := s.webhook.SendAchievementUnlocked(ctx, event); err != nil {
			prommetrics.RecordNotification("webhook", "error")
			errs = append(errs, fmt.Errorf("webhook notification: %w", err))
		} else {
			prommetrics.RecordNotification("webhook", "success")
		}
	}

	if len(errs) == 0 {
		s.log.Debug().Uint("user_id", event.UserID).Str("key", event.Key).Msg("Unlock notification delivered")
	}
	return errors.Join(errs...)
}

// List returns a user's in-app notifications, newest first.
func (s *Service) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if s.store == nil {
		return []models.Notification{}, nil
	}
	return s.store.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	if s.store == nil {
		return nil
	}
	return s.store.MarkRead(ctx, userID, id)
}
