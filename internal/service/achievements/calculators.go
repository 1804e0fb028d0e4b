package achievements

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syncup-app/achievements/internal/models"
)

// dayMark is one dated log record reduced to what streak counting needs.
type dayMark struct {
	date      *time.Time
	completed bool
}

// GoalStreak returns the number of consecutive qualifying days ending at the most
// recent day (on or before today in loc) that has goals. A day qualifies when every
// goal dated that day is completed. Goals without a date are ignored.
func GoalStreak(goals []models.Goal, now time.Time, loc *time.Location) int {
	marks := make([]dayMark, 0, len(goals))
	for _, g := range goals {
		marks = append(marks, dayMark{date: g.Date, completed: g.Completed})
	}
	return dailyStreak(marks, now, loc)
}

// FitnessStreak is GoalStreak over fitness tasks.
func FitnessStreak(tasks []models.FitnessTask, now time.Time, loc *time.Location) int {
	marks := make([]dayMark, 0, len(tasks))
	for _, t := range tasks {
		marks = append(marks, dayMark{date: t.Date, completed: t.Completed})
	}
	return dailyStreak(marks, now, loc)
}

func dailyStreak(marks []dayMark, now time.Time, loc *time.Location) int {
	today := civilDay(now, loc)

	qualifies := make(map[time.Time]bool)
	var latest time.Time
	for _, m := range marks {
		if m.date == nil {
			continue
		}
		d := civilDay(*m.date, loc)
		if d.After(today) {
			continue
		}
		if q, seen := qualifies[d]; seen {
			qualifies[d] = q && m.completed
		} else {
			qualifies[d] = m.completed
		}
		if d.After(latest) {
			latest = d
		}
	}

	streak := 0
	for d := latest; len(qualifies) > 0; d = d.AddDate(0, 0, -1) {
		if !qualifies[d] {
			break
		}
		streak++
	}
	return streak
}

// BudgetStreak returns the number of consecutive months, ending at the current
// month in loc, whose expense total stays within monthlyBudget. A month without
// expense logs ends the streak, so a current month with no expenses yields 0. A
// budget that is not positive yields 0.
func BudgetStreak(logs []models.FinanceLog, monthlyBudget decimal.Decimal, now time.Time, loc *time.Location) int {
	if !monthlyBudget.IsPositive() {
		return 0
	}
	current := civilMonth(now, loc)

	spent := make(map[time.Time]decimal.Decimal)
	for _, l := range logs {
		if l.Type != models.FinanceExpense || l.Date == nil || l.Amount.IsNegative() {
			continue
		}
		m := civilMonth(*l.Date, loc)
		if m.After(current) {
			continue
		}
		spent[m] = spent[m].Add(l.Amount)
	}

	streak := 0
	for m := current; ; m = m.AddDate(0, -1, 0) {
		total, ok := spent[m]
		if !ok || total.GreaterThan(monthlyBudget) {
			break
		}
		streak++
	}
	return streak
}

// CumulativeEarned sums all income.
func CumulativeEarned(logs []models.FinanceLog) decimal.Decimal {
	return sumAmounts(logs, models.FinanceIncome)
}

// CumulativeSaved sums money that came in or was set aside: income and savings entries.
func CumulativeSaved(logs []models.FinanceLog) decimal.Decimal {
	return sumAmounts(logs, models.FinanceIncome, models.FinanceSavings)
}

func sumAmounts(logs []models.FinanceLog, types ...models.FinanceType) decimal.Decimal {
	total := decimal.Zero
	for _, l := range logs {
		if l.Amount.IsNegative() || !slices.Contains(types, l.Type) {
			continue
		}
		total = total.Add(l.Amount)
	}
	return total
}

// civilDay maps an instant to midnight UTC of its calendar date in loc, so that
// day arithmetic is free of DST jumps.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func civilMonth(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
