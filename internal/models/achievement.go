// Package models defines domain models for the SyncUp achievement service.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups achievements for display.
type Category string

// Achievement categories.
const (
	CategoryGoal    Category = "goal"
	CategoryFitness Category = "fitness"
	CategoryFinance Category = "finance"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGoal, CategoryFitness, CategoryFinance:
		return true
	}
	return false
}

// Metric selects the progress calculator for a definition.
type Metric string

// Progress metrics.
const (
	MetricGoalStreak       Metric = "goal_streak"
	MetricFitnessStreak    Metric = "fitness_streak"
	MetricBudgetStreak     Metric = "budget_streak"
	MetricCumulativeSaved  Metric = "cumulative_saved"
	MetricCumulativeEarned Metric = "cumulative_earned"
)

// RequirementKind returns the only requirement kind a metric can be compared with.
// The second result is false for unknown metrics.
func (m Metric) RequirementKind() (RequirementKind, bool) {
	switch m {
	case MetricGoalStreak, MetricFitnessStreak:
		return RequirementStreak, true
	case MetricBudgetStreak:
		return RequirementMonths, true
	case MetricCumulativeSaved, MetricCumulativeEarned:
		return RequirementAmount, true
	}
	return "", false
}

// RequirementKind is the unit of a requirement threshold.
type RequirementKind string

// Requirement kinds.
const (
	RequirementStreak RequirementKind = "streak" // consecutive days
	RequirementMonths RequirementKind = "months" // consecutive months
	RequirementAmount RequirementKind = "amount" // currency units
)

// Requirement is the threshold a progress value must reach. Exactly one kind is set.
type Requirement struct {
	Kind  RequirementKind `gorm:"size:20;not null"`
	Value decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// Streak returns a day-streak requirement.
func Streak(days int) Requirement {
	return Requirement{Kind: RequirementStreak, Value: decimal.NewFromInt(int64(days))}
}

// Months returns a month-streak requirement.
func Months(months int) Requirement {
	return Requirement{Kind: RequirementMonths, Value: decimal.NewFromInt(int64(months))}
}

// Amount returns a cumulative amount requirement.
func Amount(amount decimal.Decimal) Requirement {
	return Requirement{Kind: RequirementAmount, Value: amount}
}

// ParseRequirement builds a requirement from its single-key object form,
// e.g. {"streak": 3}.
func ParseRequirement(raw map[string]decimal.Decimal) (Requirement, error) {
	if len(raw) != 1 {
		return Requirement{}, fmt.Errorf("requirement must have exactly one key, got %d", len(raw))
	}
	for k, v := range raw {
		kind := RequirementKind(k)
		switch kind {
		case RequirementStreak, RequirementMonths:
			if !v.IsInteger() {
				return Requirement{}, fmt.Errorf("%s requirement must be a whole number, got %s", k, v)
			}
		case RequirementAmount:
			if !v.Equal(v.Round(2)) {
				return Requirement{}, fmt.Errorf("amount requirement must have at most 2 decimal places, got %s", v)
			}
		default:
			return Requirement{}, fmt.Errorf("unknown requirement kind %q", k)
		}
		if !v.IsPositive() {
			return Requirement{}, fmt.Errorf("%s requirement must be positive, got %s", k, v)
		}
		return Requirement{Kind: kind, Value: v}, nil
	}
	return Requirement{}, nil
}

// MarshalJSON encodes the requirement as {"<kind>": <number>}.
func (r Requirement) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]json.Number{string(r.Kind): json.Number(r.Value.String())})
}

// UnmarshalJSON decodes the {"<kind>": <number>} form.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRequirement(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Achievement is a catalog definition. Definitions are seeded at startup and read-only afterwards.
type Achievement struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Key         string      `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Name        string      `gorm:"not null;size:150" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Category    Category    `gorm:"not null;size:20" json:"category"`
	Metric      Metric      `gorm:"not null;size:40" json:"metric"`
	Requirement Requirement `gorm:"embedded;embeddedPrefix:requirement_" json:"requirement"`
	Icon        string      `gorm:"size:50" json:"icon"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name for Achievement model.
func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement records that a user unlocked an achievement. At most one per
// (user, achievement); never updated or deleted.
type UserAchievement struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint            `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   Achievement     `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	EarnedAt      time.Time       `gorm:"not null" json:"earned_at"`
	Progress      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"progress"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
