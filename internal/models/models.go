// Package models defines the GORM models persisted by the API.
package models

// All lists every model, in dependency order, for schema creation in tests.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Space{},
		&Member{},
		&Category{},
		&Holding{},
		&Transaction{},
		&Budget{},
		&BudgetHistory{},
		&AuditLog{},
	}
}
