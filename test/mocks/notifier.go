package mocks

import (
	"context"
	"sync"

	"github.com/syncup-app/achievements/internal/service/achievements"
)

// MockNotifier records every unlock event it receives
type MockNotifier struct {
	Err error

	mu     sync.Mutex
	events []achievements.UnlockEvent
}

func (m *MockNotifier) AchievementUnlocked(_ context.Context, event achievements.UnlockEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns a copy of the received events
func (m *MockNotifier) Events() []achievements.UnlockEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]achievements.UnlockEvent(nil), m.events...)
}
