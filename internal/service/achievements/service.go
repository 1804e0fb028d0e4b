// Package achievements evaluates user progress against the achievement catalog,
// records unlocks exactly once, and assembles the per-user achievement view.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	prommetrics "github.com/syncup-app/achievements/internal/metrics"
	"github.com/syncup-app/achievements/internal/models"
	"github.com/syncup-app/achievements/internal/repository"
	"github.com/syncup-app/achievements/pkg/logger"
)

// ErrUnavailable marks failures of the catalog, unlock or log stores. Callers may retry.
var ErrUnavailable = errors.New("achievement data temporarily unavailable")

// IsRetryable reports whether err came from a transient store failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// AchievementRepository interface for catalog and unlock record operations.
type AchievementRepository interface {
	GetAll(ctx context.Context) ([]models.Achievement, error)
	GetUserUnlocks(ctx context.Context, userID uint) ([]models.UserAchievement, error)
	GetUserUnlock(ctx context.Context, userID, achievementID uint) (*models.UserAchievement, error)
	CreateUnlock(ctx context.Context, unlock *models.UserAchievement) (bool, error)
}

// LogStore interface for the read-only activity logs.
type LogStore interface {
	ListGoals(ctx context.Context, userID uint) ([]models.Goal, error)
	ListFitnessTasks(ctx context.Context, userID uint) ([]models.FitnessTask, error)
	ListFinanceLogs(ctx context.Context, userID uint) ([]models.FinanceLog, error)
	GetMonthlyBudget(ctx context.Context, userID uint) (decimal.Decimal, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	ListIDs(ctx context.Context) ([]uint, error)
}

// Notifier receives newly unlocked achievements. Errors are logged and dropped.
type Notifier interface {
	AchievementUnlocked(ctx context.Context, event UnlockEvent) error
}

// UnlockEvent describes an achievement a user has just unlocked.
type UnlockEvent struct {
	ID            string          `json:"id"`
	UserID        uint            `json:"user_id"`
	AchievementID uint            `json:"achievement_id"`
	Key           string          `json:"key"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Icon          string          `json:"icon"`
	Category      models.Category `json:"category"`
	EarnedAt      time.Time       `json:"earned_at"`
}

// Service handles achievement evaluation and retrieval.
type Service struct {
	achievementRepo AchievementRepository
	logStore        LogStore
	userRepo        UserRepository
	notifier        Notifier
	location        *time.Location
	now             func() time.Time
	log             *logger.Logger
}

// NewService creates a new achievement service.
func NewService(
	achievementRepo *repository.AchievementRepository,
	logRepo *repository.LogRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	location *time.Location,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(achievementRepo, logRepo, userRepo, notifier, location, log)
}

// NewServiceWithInterfaces creates a new achievement service with interface dependencies (useful for testing).
// A nil notifier disables notifications; a nil location means UTC.
func NewServiceWithInterfaces(
	achievementRepo AchievementRepository,
	logStore LogStore,
	userRepo UserRepository,
	notifier Notifier,
	location *time.Location,
	log *logger.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		achievementRepo: achievementRepo,
		logStore:        logStore,
		userRepo:        userRepo,
		notifier:        notifier,
		location:        location,
		now:             time.Now,
		log:             log,
	}
}

// WithClock replaces the time source used for streak boundaries and earned_at.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetCatalog returns every achievement definition.
func (s *Service) GetCatalog(ctx context.Context) ([]models.Achievement, error) {
	defs, err := s.achievementRepo.GetAll(ctx)
	if err != nil {
		return nil, unavailable("load catalog", err)
	}
	return defs, nil
}

// GetAchievements evaluates the user's progress, records any new unlocks, and
// returns one view per catalog definition.
func (s *Service) GetAchievements(ctx context.Context, userID uint) ([]View, error) {
	start := time.Now()
	views, events, err := s.evaluate(ctx, userID)
	prommetrics.ObserveEvaluationDuration(time.Since(start).Seconds())

	// Unlocks persisted before a failure are still announced.
	s.notify(ctx, events)

	if err != nil {
		prommetrics.RecordAchievementRequest("error")
		return nil, err
	}
	prommetrics.RecordAchievementRequest("success")
	return views, nil
}

// EvaluateUser records any new unlocks for the user and returns them.
func (s *Service) EvaluateUser(ctx context.Context, userID uint) ([]UnlockEvent, error) {
	_, events, err := s.evaluate(ctx, userID)
	s.notify(ctx, events)
	return events, err
}

// EvaluateAllUsers evaluates every user. Per-user failures are logged and skipped.
// It returns the number of new unlocks.
func (s *Service) EvaluateAllUsers(ctx context.Context) (int, error) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return 0, unavailable("list users", err)
	}

	total := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		events, err := s.EvaluateUser(ctx, id)
		total += len(events)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", id).Msg("Failed to evaluate achievements for user")
			continue
		}
	}

	s.log.Info().
		Int("users", len(ids)).
		Int("unlocks", total).
		Msg("Completed achievement evaluation for all users")

	return total, nil
}

// evaluate runs catalog read, snapshot read, unlock evaluation and view assembly.
// Reads happen before any write, so a read failure persists nothing.
func (s *Service) evaluate(ctx context.Context, userID uint) ([]View, []UnlockEvent, error) {
	catalog, err := s.achievementRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, unavailable("load catalog", err)
	}

	unlocks, err := s.achievementRepo.GetUserUnlocks(ctx, userID)
	if err != nil {
		return nil, nil, unavailable("load unlocks", err)
	}
	earned := make(map[uint]models.UserAchievement, len(unlocks))
	for _, u := range unlocks {
		earned[u.AchievementID] = u
	}

	snap, err := s.loadSnapshot(ctx, userID, catalog)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	progress := make(map[models.Metric]decimal.Decimal)
	views := make([]View, 0, len(catalog))
	var events []UnlockEvent

	for _, def := range catalog {
		if !evaluable(def) {
			s.log.Warn().
				Str("key", def.Key).
				Str("metric", string(def.Metric)).
				Str("requirement_kind", string(def.Requirement.Kind)).
				Msg("Unknown achievement metric, reporting as locked")
			prommetrics.RecordDefinitionWarning(def.Key)
			views = append(views, newView(def, nil, decimal.Zero))
			continue
		}

		value, ok := progress[def.Metric]
		if !ok {
			value = snap.progress(def.Metric, now, s.location)
			progress[def.Metric] = value
		}

		record, has := earned[def.ID]
		if !has && value.GreaterThanOrEqual(def.Requirement.Value) {
			stored, created, err := s.unlock(ctx, userID, def, value, now)
			if err != nil {
				return nil, events, err
			}
			if created {
				events = append(events, UnlockEvent{
					ID:            uuid.NewString(),
					UserID:        userID,
					AchievementID: def.ID,
					Key:           def.Key,
					Name:          def.Name,
					Description:   def.Description,
					Icon:          def.Icon,
					Category:      def.Category,
					EarnedAt:      stored.EarnedAt,
				})
			}
			record, has = *stored, true
			earned[def.ID] = record
		}

		if has {
			views = append(views, newView(def, &record, value))
		} else {
			views = append(views, newView(def, nil, value))
		}
	}

	return views, events, nil
}

// unlock inserts the unlock record. When another evaluation won the race the
// stored record is returned with created=false.
func (s *Service) unlock(ctx context.Context, userID uint, def models.Achievement, value decimal.Decimal, now time.Time) (*models.UserAchievement, bool, error) {
	record := &models.UserAchievement{
		UserID:        userID,
		AchievementID: def.ID,
		EarnedAt:      now.UTC(),
		Progress:      value,
	}

	created, err := s.achievementRepo.CreateUnlock(ctx, record)
	if err != nil {
		return nil, false, unavailable("record unlock "+def.Key, err)
	}

	if created {
		prommetrics.RecordAchievementUnlocked(def.Key, string(def.Category))
		s.log.Info().
			Uint("user_id", userID).
			Str("key", def.Key).
			Str("progress", value.String()).
			Msg("Achievement unlocked")
		return record, true, nil
	}

	prommetrics.RecordUnlockConflict(def.Key)
	stored, err := s.achievementRepo.GetUserUnlock(ctx, userID, def.ID)
	if err != nil {
		return nil, false, unavailable("reload unlock "+def.Key, err)
	}
	s.log.Debug().Uint("user_id", userID).Str("key", def.Key).Msg("Achievement already unlocked concurrently")
	return stored, false, nil
}

func (s *Service) notify(ctx context.Context, events []UnlockEvent) {
	if s.notifier == nil {
		return
	}
	for _, e := range events {
		if err := s.notifier.AchievementUnlocked(ctx, e); err != nil {
			s.log.Warn().Err(err).Uint("user_id", e.UserID).Str("key", e.Key).Msg("Failed to notify achievement unlock")
		}
	}
}

// evaluable reports whether the definition's metric is known and its requirement
// unit matches it.
func evaluable(def models.Achievement) bool {
	kind, ok := def.Metric.RequirementKind()
	return ok && kind == def.Requirement.Kind
}

// snapshot holds the logs read for one evaluation.
type snapshot struct {
	goals   []models.Goal
	tasks   []models.FitnessTask
	finance []models.FinanceLog
	budget  decimal.Decimal
}

// loadSnapshot reads each log source the catalog needs, once, concurrently.
func (s *Service) loadSnapshot(ctx context.Context, userID uint, catalog []models.Achievement) (*snapshot, error) {
	var needGoals, needTasks, needFinance, needBudget bool
	for _, def := range catalog {
		switch def.Metric {
		case models.MetricGoalStreak:
			needGoals = true
		case models.MetricFitnessStreak:
			needTasks = true
		case models.MetricBudgetStreak:
			needFinance, needBudget = true, true
		case models.MetricCumulativeSaved, models.MetricCumulativeEarned:
			needFinance = true
		}
	}

	snap := &snapshot{budget: decimal.Zero}
	g, gctx := errgroup.WithContext(ctx)

	if needGoals {
		g.Go(func() error {
			goals, err := s.logStore.ListGoals(gctx, userID)
			if err != nil {
				return unavailable("list goals", err)
			}
			snap.goals = goals
			return nil
		})
	}
	if needTasks {
		g.Go(func() error {
			tasks, err := s.logStore.ListFitnessTasks(gctx, userID)
			if err != nil {
				return unavailable("list fitness tasks", err)
			}
			snap.tasks = tasks
			return nil
		})
	}
	if needFinance {
		g.Go(func() error {
			logs, err := s.logStore.ListFinanceLogs(gctx, userID)
			if err != nil {
				return unavailable("list finance logs", err)
			}
			snap.finance = logs
			return nil
		})
	}
	if needBudget {
		g.Go(func() error {
			budget, err := s.logStore.GetMonthlyBudget(gctx, userID)
			if err != nil {
				return unavailable("load monthly budget", err)
			}
			snap.budget = budget
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// progress computes the metric's current value. The metric must be evaluable.
func (snap *snapshot) progress(metric models.Metric, now time.Time, loc *time.Location) decimal.Decimal {
	switch metric {
	case models.MetricGoalStreak:
		return decimal.NewFromInt(int64(GoalStreak(snap.goals, now, loc)))
	case models.MetricFitnessStreak:
		return decimal.NewFromInt(int64(FitnessStreak(snap.tasks, now, loc)))
	case models.MetricBudgetStreak:
		return decimal.NewFromInt(int64(BudgetStreak(snap.finance, snap.budget, now, loc)))
	case models.MetricCumulativeSaved:
		return CumulativeSaved(snap.finance)
	case models.MetricCumulativeEarned:
		return CumulativeEarned(snap.finance)
	}
	return decimal.Zero
}
