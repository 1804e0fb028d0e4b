// Package notify delivers achievement unlock notifications to users: an in-app
// banner row and, optionally, an incoming-webhook chat message.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/syncup-app/achievements/internal/config"
	"github.com/syncup-app/achievements/internal/models"
	"github.com/syncup-app/achievements/internal/service/achievements"
	"github.com/syncup-app/achievements/pkg/logger"
)

// WebhookClient posts messages to a Slack/Mattermost compatible incoming webhook.
type WebhookClient struct {
	webhookURL string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewWebhookClient creates a new webhook client.
func NewWebhookClient(cfg *config.NotificationsConfig, log *logger.Logger) *WebhookClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookClient{
		webhookURL: cfg.WebhookURL,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Enabled reports whether messages are actually sent.
func (c *WebhookClient) Enabled() bool {
	return c.enabled
}

// Message represents an incoming-webhook payload.
type Message struct {
	Username    string         `json:"username,omitempty"`
	Text        string         `json:"text,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage posts a message to the webhook.
func (c *WebhookClient) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Webhook notifications are disabled, skipping message")
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().Int("status", resp.StatusCode).Msg("Sent webhook message")
	return nil
}

// SendAchievementUnlocked announces an unlock.
func (c *WebhookClient) SendAchievementUnlocked(ctx context.Context, event achievements.UnlockEvent) error {
	return c.SendMessage(ctx, buildUnlockMessage(event))
}

func buildUnlockMessage(event achievements.UnlockEvent) *Message {
	title := fmt.Sprintf("%s %s", event.Icon, event.Name)
	return &Message{
		Username: "SyncUp",
		Text:     fmt.Sprintf("🎉 User %d unlocked **%s**", event.UserID, event.Name),
		Attachments: []Attachment{{
			Fallback: fmt.Sprintf("Achievement unlocked: %s", event.Name),
			Color:    categoryColor(event.Category),
			Title:    title,
			Text:     event.Description,
			Fields: []Field{
				{Short: true, Title: "Category", Value: string(event.Category)},
				{Short: true, Title: "Earned", Value: event.EarnedAt.UTC().Format(time.RFC3339)},
			},
			Footer: event.Key,
		}},
		Props: map[string]any{
			"event_id":       event.ID,
			"user_id":        event.UserID,
			"achievement_id": event.AchievementID,
			"key":            event.Key,
		},
	}
}

func categoryColor(category models.Category) string {
	switch category {
	case models.CategoryGoal:
		return "#4F46E5"
	case models.CategoryFitness:
		return "#16A34A"
	case models.CategoryFinance:
		return "#D97706"
	default:
		return "#6B7280"
	}
}
