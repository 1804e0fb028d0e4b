package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/syncup-app/achievements/internal/models"
)

func TestNotificationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	for _, key := range []string{"goal_streak_3", "save_1000"} {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID:         alice.ID,
			Type:           models.NotificationAchievementUnlocked,
			Title:          "Achievement unlocked",
			AchievementKey: key,
		}))
	}

	all, err := repo.ListByUser(ctx, alice.ID, false, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "save_1000", all[0].AchievementKey, "newest first")

	require.NoError(t, repo.MarkRead(ctx, alice.ID, all[0].ID))

	unread, err := repo.ListByUser(ctx, alice.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "goal_streak_3", unread[0].AchievementKey)

	err = repo.MarkRead(ctx, bob.ID, all[1].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
