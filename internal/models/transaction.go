package models

import (
	"time"

	"spacebudget/internal/ledger"
	"spacebudget/internal/money"

	"gorm.io/gorm"
)

// Transaction records a money movement within a space. Which reference
// columns are set depends on Type, see package ledger.
type Transaction struct {
	Base
	SpaceID       string       `gorm:"type:uuid;not null;index:idx_tx_space_occurred,priority:1" json:"space_id"`
	Type          ledger.Type  `gorm:"size:16;not null" json:"type"`
	Amount        money.Amount `gorm:"type:numeric(18,2);not null" json:"amount"`
	OccurredAt    time.Time    `gorm:"not null;index:idx_tx_space_occurred,priority:2" json:"occurred_at"`
	Memo          *string      `gorm:"size:500" json:"memo"`
	CategoryID    *string      `gorm:"type:uuid;index" json:"category_id"`
	FromHoldingID *string      `gorm:"type:uuid;index" json:"from_holding_id"`
	ToHoldingID   *string      `gorm:"type:uuid;index" json:"to_holding_id"`
	CreatedBy     string       `gorm:"type:uuid;not null" json:"created_by"`
}

// Row returns the type and references of the transaction.
func (t *Transaction) Row() ledger.Row {
	return ledger.Row{
		Type: t.Type,
		Refs: ledger.Refs{
			CategoryID:    t.CategoryID,
			FromHoldingID: t.FromHoldingID,
			ToHoldingID:   t.ToHoldingID,
		},
	}
}

// BeforeCreate assigns the id, stores the timestamp in UTC and refuses rows
// whose references do not match their type.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if err := t.Base.BeforeCreate(tx); err != nil {
		return err
	}
	t.OccurredAt = t.OccurredAt.UTC()
	return ledger.Check(t.Row())
}
