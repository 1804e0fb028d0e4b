package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a daily goal logged by a user. Date is the day the goal was for;
// rows without one are treated as malformed by streak calculations.
type Goal struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Title     string     `gorm:"size:255" json:"title"`
	Date      *time.Time `gorm:"index" json:"date"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for Goal model.
func (Goal) TableName() string {
	return "goals"
}

// FitnessTask is a scheduled workout or fitness activity.
type FitnessTask struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Name      string     `gorm:"size:255" json:"name"`
	Date      *time.Time `gorm:"index" json:"date"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for FitnessTask model.
func (FitnessTask) TableName() string {
	return "fitness_tasks"
}

// FinanceType classifies a finance log entry.
type FinanceType string

// Finance log types.
const (
	FinanceIncome  FinanceType = "income"
	FinanceExpense FinanceType = "expense"
	FinanceSavings FinanceType = "savings"
)

// FinanceLog is a single money movement.
type FinanceLog struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Date      *time.Time      `gorm:"index" json:"date"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type      FinanceType     `gorm:"size:20;not null" json:"type"`
	Note      string          `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for FinanceLog model.
func (FinanceLog) TableName() string {
	return "finance_logs"
}
