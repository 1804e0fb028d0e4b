package achievements

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/syncup-app/achievements/internal/models"
)

var testNow = time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

// daysAgo returns noon UTC n days before testNow.
func daysAgo(n int) *time.Time {
	t := time.Date(2026, 3, 15-n, 12, 0, 0, 0, time.UTC)
	return &t
}

func goal(date *time.Time, completed bool) models.Goal {
	return models.Goal{Date: date, Completed: completed}
}

func TestGoalStreak(t *testing.T) {
	tests := []struct {
		name  string
		goals []models.Goal
		want  int
	}{
		{
			name: "no goals",
			want: 0,
		},
		{
			name: "five complete days after an incomplete one",
			goals: []models.Goal{
				goal(daysAgo(5), false),
				goal(daysAgo(4), true),
				goal(daysAgo(3), true),
				goal(daysAgo(2), true),
				goal(daysAgo(1), true),
				goal(daysAgo(0), true),
			},
			want: 5,
		},
		{
			name: "gap breaks the streak",
			goals: []models.Goal{
				goal(daysAgo(4), true),
				goal(daysAgo(3), true),
				goal(daysAgo(1), true),
				goal(daysAgo(0), true),
			},
			want: 2,
		},
		{
			name: "one incomplete goal disqualifies the day",
			goals: []models.Goal{
				goal(daysAgo(2), true),
				goal(daysAgo(1), true),
				goal(daysAgo(0), true),
				goal(daysAgo(0), false),
			},
			want: 0,
		},
		{
			name: "incomplete day in the middle",
			goals: []models.Goal{
				goal(daysAgo(3), true),
				goal(daysAgo(2), true),
				goal(daysAgo(2), false),
				goal(daysAgo(1), true),
				goal(daysAgo(0), true),
			},
			want: 2,
		},
		{
			name: "streak is anchored at the latest logged day",
			goals: []models.Goal{
				goal(daysAgo(7), true),
				goal(daysAgo(6), true),
				goal(daysAgo(5), true),
			},
			want: 3,
		},
		{
			name: "planned future goals are ignored",
			goals: []models.Goal{
				goal(daysAgo(1), true),
				goal(daysAgo(0), true),
				goal(daysAgo(-1), false),
			},
			want: 2,
		},
		{
			name: "undated goals are skipped",
			goals: []models.Goal{
				goal(nil, false),
				goal(daysAgo(1), true),
				goal(daysAgo(0), true),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GoalStreak(tt.goals, testNow, time.UTC))
		})
	}
}

func TestGoalStreak_DayBoundariesFollowLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// 16:00 UTC on Mar 13 and Mar 14 are Mar 14 and Mar 15 in Tokyo.
	d1 := time.Date(2026, 3, 13, 16, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC)
	// Same UTC day as d2, but Mar 14 in Tokyo.
	d3 := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)

	goals := []models.Goal{goal(&d1, true), goal(&d2, true), goal(&d3, false)}

	assert.Equal(t, 1, GoalStreak(goals, testNow, tokyo))
	assert.Equal(t, 0, GoalStreak(goals, testNow, time.UTC))
}

func TestFitnessStreak(t *testing.T) {
	tasks := []models.FitnessTask{
		{Date: daysAgo(3), Completed: true},
		{Date: daysAgo(2), Completed: true},
		{Date: daysAgo(1), Completed: true},
		{Date: daysAgo(1), Completed: true},
		{Date: daysAgo(0), Completed: true},
	}
	assert.Equal(t, 4, FitnessStreak(tasks, testNow, time.UTC))

	tasks = append(tasks, models.FitnessTask{Date: daysAgo(0), Completed: false})
	assert.Equal(t, 0, FitnessStreak(tasks, testNow, time.UTC))
}

func monthDay(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	return &t
}

func expense(date *time.Time, amount string) models.FinanceLog {
	return models.FinanceLog{Date: date, Amount: decimal.RequireFromString(amount), Type: models.FinanceExpense}
}

func TestBudgetStreak(t *testing.T) {
	budget := decimal.NewFromInt(1000)

	tests := []struct {
		name   string
		logs   []models.FinanceLog
		budget decimal.Decimal
		want   int
	}{
		{
			name:   "no expenses",
			budget: budget,
			want:   0,
		},
		{
			name: "three months within budget",
			logs: []models.FinanceLog{
				expense(monthDay(2026, 1, 5), "400"),
				expense(monthDay(2026, 1, 20), "600"),
				expense(monthDay(2026, 2, 3), "999.99"),
				expense(monthDay(2026, 3, 1), "10"),
			},
			budget: budget,
			want:   3,
		},
		{
			name: "over budget month ends the streak",
			logs: []models.FinanceLog{
				expense(monthDay(2026, 1, 5), "1000.01"),
				expense(monthDay(2026, 2, 3), "200"),
				expense(monthDay(2026, 3, 1), "200"),
			},
			budget: budget,
			want:   2,
		},
		{
			name: "month without expenses ends the streak",
			logs: []models.FinanceLog{
				expense(monthDay(2025, 12, 5), "100"),
				expense(monthDay(2026, 2, 3), "100"),
				expense(monthDay(2026, 3, 1), "100"),
			},
			budget: budget,
			want:   2,
		},
		{
			name: "current month over budget",
			logs: []models.FinanceLog{
				expense(monthDay(2026, 2, 3), "100"),
				expense(monthDay(2026, 3, 1), "1500"),
			},
			budget: budget,
			want:   0,
		},
		{
			name: "income does not count as spending",
			logs: []models.FinanceLog{
				{Date: monthDay(2026, 3, 1), Amount: decimal.NewFromInt(5000), Type: models.FinanceIncome},
				expense(monthDay(2026, 3, 2), "100"),
			},
			budget: budget,
			want:   1,
		},
		{
			name: "streak crosses the year boundary",
			logs: []models.FinanceLog{
				expense(monthDay(2025, 12, 24), "900"),
				expense(monthDay(2026, 1, 2), "100"),
				expense(monthDay(2026, 2, 2), "100"),
				expense(monthDay(2026, 3, 2), "100"),
			},
			budget: budget,
			want:   4,
		},
		{
			name: "expenses only in earlier months",
			logs: []models.FinanceLog{
				expense(monthDay(2024, 1, 5), "10"),
				expense(monthDay(2024, 2, 5), "10"),
				expense(monthDay(2024, 3, 5), "10"),
			},
			budget: budget,
			want:   0,
		},
		{
			name: "no expenses yet this month",
			logs: []models.FinanceLog{
				expense(monthDay(2026, 1, 5), "100"),
				expense(monthDay(2026, 2, 5), "100"),
			},
			budget: budget,
			want:   0,
		},
		{
			name:   "unset budget",
			logs:   []models.FinanceLog{expense(monthDay(2026, 3, 1), "1")},
			budget: decimal.Zero,
			want:   0,
		},
		{
			name: "undated and future expenses are ignored",
			logs: []models.FinanceLog{
				expense(nil, "99999"),
				expense(monthDay(2026, 4, 1), "99999"),
				expense(monthDay(2026, 3, 1), "100"),
			},
			budget: budget,
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetStreak(tt.logs, tt.budget, testNow, time.UTC))
		})
	}
}

func TestCumulativeTotals(t *testing.T) {
	logs := []models.FinanceLog{
		{Amount: decimal.RequireFromString("500.50"), Type: models.FinanceIncome, Date: daysAgo(3)},
		{Amount: decimal.RequireFromString("499.49"), Type: models.FinanceIncome},
		{Amount: decimal.RequireFromString("250"), Type: models.FinanceSavings, Date: daysAgo(1)},
		{Amount: decimal.RequireFromString("80"), Type: models.FinanceExpense, Date: daysAgo(1)},
		{Amount: decimal.RequireFromString("-40"), Type: models.FinanceIncome, Date: daysAgo(1)},
	}

	assert.Equal(t, "999.99", CumulativeEarned(logs).String())
	assert.Equal(t, "1249.99", CumulativeSaved(logs).String())
	assert.True(t, CumulativeSaved(nil).IsZero())
}
