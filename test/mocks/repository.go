package mocks

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syncup-app/achievements/internal/models"
)

// MockLogStore is a simple mock for the activity log store
type MockLogStore struct {
	ListGoalsFunc        func(ctx context.Context, userID uint) ([]models.Goal, error)
	ListFitnessTasksFunc func(ctx context.Context, userID uint) ([]models.FitnessTask, error)
	ListFinanceLogsFunc  func(ctx context.Context, userID uint) ([]models.FinanceLog, error)
	GetMonthlyBudgetFunc func(ctx context.Context, userID uint) (decimal.Decimal, error)
}

func (m *MockLogStore) ListGoals(ctx context.Context, userID uint) ([]models.Goal, error) {
	if m.ListGoalsFunc != nil {
		return m.ListGoalsFunc(ctx, userID)
	}
	return []models.Goal{}, nil
}

func (m *MockLogStore) ListFitnessTasks(ctx context.Context, userID uint) ([]models.FitnessTask, error) {
	if m.ListFitnessTasksFunc != nil {
		return m.ListFitnessTasksFunc(ctx, userID)
	}
	return []models.FitnessTask{}, nil
}

func (m *MockLogStore) ListFinanceLogs(ctx context.Context, userID uint) ([]models.FinanceLog, error) {
	if m.ListFinanceLogsFunc != nil {
		return m.ListFinanceLogsFunc(ctx, userID)
	}
	return []models.FinanceLog{}, nil
}

func (m *MockLogStore) GetMonthlyBudget(ctx context.Context, userID uint) (decimal.Decimal, error) {
	if m.GetMonthlyBudgetFunc != nil {
		return m.GetMonthlyBudgetFunc(ctx, userID)
	}
	return decimal.Zero, nil
}

// MockAchievementRepository is an in-memory catalog and unlock store
type MockAchievementRepository struct {
	Catalog []models.Achievement

	// CreateUnlockErr, when set, is returned by every CreateUnlock call
	CreateUnlockErr error
	// GetAllErr, when set, is returned by GetAll
	GetAllErr error

	mu      sync.Mutex
	unlocks []models.UserAchievement
	nextID  uint
}

func (m *MockAchievementRepository) GetAll(_ context.Context) ([]models.Achievement, error) {
	if m.GetAllErr != nil {
		return nil, m.GetAllErr
	}
	return append([]models.Achievement(nil), m.Catalog...), nil
}

func (m *MockAchievementRepository) GetUserUnlocks(_ context.Context, userID uint) ([]models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.UserAchievement
	for _, u := range m.unlocks {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MockAchievementRepository) GetUserUnlock(_ context.Context, userID, achievementID uint) (*models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.unlocks {
		if u.UserID == userID && u.AchievementID == achievementID {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAchievementRepository) CreateUnlock(_ context.Context, unlock *models.UserAchievement) (bool, error) {
	if m.CreateUnlockErr != nil {
		return false, m.CreateUnlockErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.unlocks {
		if u.UserID == unlock.UserID && u.AchievementID == unlock.AchievementID {
			return false, nil
		}
	}
	m.nextID++
	unlock.ID = m.nextID
	m.unlocks = append(m.unlocks, *unlock)
	return true, nil
}

// Seed stores an unlock record directly, bypassing uniqueness checks
func (m *MockAchievementRepository) Seed(unlock models.UserAchievement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocks = append(m.unlocks, unlock)
}

// Unlocks returns a copy of every stored unlock record
func (m *MockAchievementRepository) Unlocks() []models.UserAchievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserAchievement(nil), m.unlocks...)
}

// MockUserRepository is a simple mock for user listing
type MockUserRepository struct {
	ListIDsFunc func(ctx context.Context) ([]uint, error)
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]uint, error) {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc(ctx)
	}
	return []uint{}, nil
}
