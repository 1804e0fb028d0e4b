package achievements

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syncup-app/achievements/internal/models"
)

// View is one catalog definition merged with the user's unlock state and live progress.
type View struct {
	ID              uint
	Key             string
	Name            string
	Description     string
	Category        models.Category
	Metric          models.Metric
	Requirement     decimal.Decimal
	RequirementUnit models.RequirementKind
	Icon            string
	Earned          bool
	EarnedAt        *time.Time
	Progress        decimal.Decimal
}

func newView(def models.Achievement, record *models.UserAchievement, progress decimal.Decimal) View {
	v := View{
		ID:              def.ID,
		Key:             def.Key,
		Name:            def.Name,
		Description:     def.Description,
		Category:        def.Category,
		Metric:          def.Metric,
		Requirement:     def.Requirement.Value,
		RequirementUnit: def.Requirement.Kind,
		Icon:            def.Icon,
		Progress:        progress,
	}
	if record != nil {
		earnedAt := record.EarnedAt
		v.Earned = true
		v.EarnedAt = &earnedAt
	}
	return v
}

// MarshalJSON renders requirement and progress as plain numbers.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID              uint                   `json:"id"`
		Key             string                 `json:"key"`
		Name            string                 `json:"name"`
		Description     string                 `json:"description"`
		Category        models.Category        `json:"category"`
		Metric          models.Metric          `json:"metric"`
		Requirement     json.Number            `json:"requirement"`
		RequirementUnit models.RequirementKind `json:"requirement_unit"`
		Icon            string                 `json:"icon"`
		Earned          bool                   `json:"earned"`
		EarnedAt        *time.Time             `json:"earned_at"`
		Progress        json.Number            `json:"progress"`
	}{
		ID:              v.ID,
		Key:             v.Key,
		Name:            v.Name,
		Description:     v.Description,
		Category:        v.Category,
		Metric:          v.Metric,
		Requirement:     json.Number(v.Requirement.String()),
		RequirementUnit: v.RequirementUnit,
		Icon:            v.Icon,
		Earned:          v.Earned,
		EarnedAt:        v.EarnedAt,
		Progress:        json.Number(v.Progress.String()),
	})
}
