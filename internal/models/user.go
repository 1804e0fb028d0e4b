package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a SyncUp account. Only the fields the achievement engine reads are mapped.
type User struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Username      string          `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email         string          `gorm:"size:255" json:"email"`
	MonthlyBudget decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"monthly_budget"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}
