package models

import (
	"time"

	"spacebudget/internal/money"
	"spacebudget/internal/types"
	"spacebudget/internal/uuid"

	"gorm.io/gorm"
)

// Budget is the spending limit for one expense category in one month.
// (space, category, month) is unique.
type Budget struct {
	Base
	SpaceID    string       `gorm:"type:uuid;not null;uniqueIndex:u_budgets_space_cat_month,priority:1" json:"space_id"`
	CategoryID string       `gorm:"type:uuid;not null;uniqueIndex:u_budgets_space_cat_month,priority:2" json:"category_id"`
	Month      types.Month  `gorm:"type:varchar(7);not null;uniqueIndex:u_budgets_space_cat_month,priority:3" json:"month"`
	Amount     money.Amount `gorm:"type:numeric(18,2);not null" json:"amount"`
	CreatedBy  string       `gorm:"type:uuid;not null" json:"created_by"`
}

// BudgetHistory is an append-only record of a budget limit change.
// PrevAmount is null for the change that created the budget.
type BudgetHistory struct {
	ID         string           `gorm:"type:uuid;primaryKey" json:"id"`
	BudgetID   string           `gorm:"type:uuid;not null;index" json:"budget_id"`
	PrevAmount money.NullAmount `gorm:"type:numeric(18,2)" json:"prev_amount"`
	NewAmount  money.Amount     `gorm:"type:numeric(18,2);not null" json:"new_amount"`
	ChangedBy  string           `gorm:"type:uuid;not null" json:"changed_by"`
	ChangedAt  time.Time        `gorm:"not null;index" json:"changed_at"`
}

// TableName matches the migration
func (BudgetHistory) TableName() string {
	return "budgets_history"
}

// BeforeCreate sets the id and change time of history rows.
func (h *BudgetHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	return nil
}
