package models

import "spacebudget/internal/money"

// HoldingType represents where money is held
type HoldingType string

const (
	HoldingTypeBank HoldingType = "bank"
	HoldingTypeCard HoldingType = "card"
	HoldingTypeCash HoldingType = "cash"
	HoldingTypeEtc  HoldingType = "etc"
)

// DefaultCurrency is used when a holding is created without one.
const DefaultCurrency = "KRW"

// Valid reports whether t is a known holding type.
func (t HoldingType) Valid() bool {
	switch t {
	case HoldingTypeBank, HoldingTypeCard, HoldingTypeCash, HoldingTypeEtc:
		return true
	}
	return false
}

// Holding is an account within a space. Names are unique per space.
type Holding struct {
	Base
	SpaceID        string       `gorm:"type:uuid;not null;uniqueIndex:u_holdings_space_name" json:"space_id"`
	Name           string       `gorm:"size:50;not null;uniqueIndex:u_holdings_space_name" json:"name"`
	Type           HoldingType  `gorm:"not null" json:"type"`
	Color          string       `gorm:"size:7;not null" json:"color"`
	Currency       string       `gorm:"size:8;not null;default:KRW" json:"currency"`
	OpeningBalance money.Amount `gorm:"type:numeric(18,2);not null" json:"opening_balance"`
}
