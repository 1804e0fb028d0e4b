package achievements

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/syncup-app/achievements/internal/models"
	"github.com/syncup-app/achievements/pkg/logger"
)

// DefaultCatalog returns the built-in achievement definitions.
func DefaultCatalog() []models.Achievement {
	return []models.Achievement{
		{Key: "goal_streak_3", Name: "Getting Started", Description: "Complete all your goals 3 days in a row", Category: models.CategoryGoal, Metric: models.MetricGoalStreak, Requirement: models.Streak(3), Icon: "🎯"},
		{Key: "goal_streak_7", Name: "Week Warrior", Description: "Complete all your goals 7 days in a row", Category: models.CategoryGoal, Metric: models.MetricGoalStreak, Requirement: models.Streak(7), Icon: "🔥"},
		{Key: "goal_streak_30", Name: "Unstoppable", Description: "Complete all your goals 30 days in a row", Category: models.CategoryGoal, Metric: models.MetricGoalStreak, Requirement: models.Streak(30), Icon: "🏆"},
		{Key: "fitness_streak_3", Name: "Warming Up", Description: "Finish your workouts 3 days in a row", Category: models.CategoryFitness, Metric: models.MetricFitnessStreak, Requirement: models.Streak(3), Icon: "💪"},
		{Key: "fitness_streak_7", Name: "Fit Week", Description: "Finish your workouts 7 days in a row", Category: models.CategoryFitness, Metric: models.MetricFitnessStreak, Requirement: models.Streak(7), Icon: "🏃"},
		{Key: "fitness_streak_30", Name: "Iron Habit", Description: "Finish your workouts 30 days in a row", Category: models.CategoryFitness, Metric: models.MetricFitnessStreak, Requirement: models.Streak(30), Icon: "🥇"},
		{Key: "budget_streak_1", Name: "On Budget", Description: "Stay within your monthly budget for a month", Category: models.CategoryFinance, Metric: models.MetricBudgetStreak, Requirement: models.Months(1), Icon: "📊"},
		{Key: "budget_streak_3", Name: "Budget Keeper", Description: "Stay within your monthly budget 3 months in a row", Category: models.CategoryFinance, Metric: models.MetricBudgetStreak, Requirement: models.Months(3), Icon: "📈"},
		{Key: "budget_streak_6", Name: "Budget Master", Description: "Stay within your monthly budget 6 months in a row", Category: models.CategoryFinance, Metric: models.MetricBudgetStreak, Requirement: models.Months(6), Icon: "🧮"},
		{Key: "save_1000", Name: "Nest Egg", Description: "Save a total of 1,000", Category: models.CategoryFinance, Metric: models.MetricCumulativeSaved, Requirement: models.Amount(decimal.NewFromInt(1000)), Icon: "🐷"},
		{Key: "save_5000", Name: "Rainy Day Fund", Description: "Save a total of 5,000", Category: models.CategoryFinance, Metric: models.MetricCumulativeSaved, Requirement: models.Amount(decimal.NewFromInt(5000)), Icon: "💰"},
		{Key: "earn_1000", Name: "First Paycheck", Description: "Earn a total of 1,000", Category: models.CategoryFinance, Metric: models.MetricCumulativeEarned, Requirement: models.Amount(decimal.NewFromInt(1000)), Icon: "💵"},
		{Key: "earn_10000", Name: "High Earner", Description: "Earn a total of 10,000", Category: models.CategoryFinance, Metric: models.MetricCumulativeEarned, Requirement: models.Amount(decimal.NewFromInt(10000)), Icon: "💎"},
	}
}

type catalogFile struct {
	Achievements []catalogEntry `yaml:"achievements" validate:"required,min=1,dive"`
}

type catalogEntry struct {
	Key         string             `yaml:"key" validate:"required,max=100"`
	Name        string             `yaml:"name" validate:"required,max=150"`
	Description string             `yaml:"description"`
	Category    string             `yaml:"category" validate:"required,oneof=goal fitness finance"`
	Metric      string             `yaml:"metric" validate:"required,max=40"`
	Icon        string             `yaml:"icon" validate:"max=50"`
	Requirement map[string]float64 `yaml:"requirement" validate:"required,len=1"`
}

// LoadCatalogFile reads achievement definitions from a YAML file of the form
//
//	achievements:
//	  - key: goal_streak_3
//	    name: Getting Started
//	    category: goal
//	    metric: goal_streak
//	    requirement: {streak: 3}
func LoadCatalogFile(path string) ([]models.Achievement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) ([]models.Achievement, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Achievements))
	defs := make([]models.Achievement, 0, len(file.Achievements))
	for _, e := range file.Achievements {
		if seen[e.Key] {
			return nil, fmt.Errorf("duplicate achievement key %q", e.Key)
		}
		seen[e.Key] = true

		raw := make(map[string]decimal.Decimal, len(e.Requirement))
		for k, v := range e.Requirement {
			raw[k] = decimal.NewFromFloat(v)
		}
		req, err := models.ParseRequirement(raw)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", e.Key, err)
		}

		defs = append(defs, models.Achievement{
			Key:         e.Key,
			Name:        e.Name,
			Description: e.Description,
			Category:    models.Category(e.Category),
			Metric:      models.Metric(e.Metric),
			Requirement: req,
			Icon:        e.Icon,
		})
	}
	return defs, nil
}

// CatalogWriter persists definitions keyed by their Key.
type CatalogWriter interface {
	Upsert(ctx context.Context, achievement *models.Achievement) error
}

// Seed writes every definition to the catalog store. Definitions whose metric
// cannot be evaluated or whose category is unknown are still stored and logged,
// so they show up as locked.
func Seed(ctx context.Context, repo CatalogWriter, defs []models.Achievement, log *logger.Logger) error {
	for i := range defs {
		def := &defs[i]
		if kind, ok := def.Metric.RequirementKind(); !ok || kind != def.Requirement.Kind {
			log.Warn().
				Str("key", def.Key).
				Str("metric", string(def.Metric)).
				Str("requirement_kind", string(def.Requirement.Kind)).
				Msg("Achievement definition cannot be evaluated")
		}
		if !def.Category.Valid() {
			log.Warn().
				Str("key", def.Key).
				Str("category", string(def.Category)).
				Msg("Achievement definition has an unknown category")
		}
		if err := repo.Upsert(ctx, def); err != nil {
			return fmt.Errorf("failed to seed achievement %q: %w", def.Key, err)
		}
	}

	log.Info().Int("count", len(defs)).Msg("Achievement catalog seeded")
	return nil
}
