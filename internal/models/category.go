package models

// CategoryKind tells expense categories from income categories
type CategoryKind string

const (
	CategoryKindExpense CategoryKind = "expense"
	CategoryKindIncome  CategoryKind = "income"
)

// Valid reports whether k is a known kind.
func (k CategoryKind) Valid() bool {
	return k == CategoryKindExpense || k == CategoryKindIncome
}

// Category classifies transactions within a space. Names are unique per space.
type Category struct {
	Base
	SpaceID string       `gorm:"type:uuid;not null;uniqueIndex:u_categories_space_name" json:"space_id"`
	Name    string       `gorm:"size:50;not null;uniqueIndex:u_categories_space_name" json:"name"`
	Kind    CategoryKind `gorm:"not null" json:"kind"`
	Color   string       `gorm:"size:7;not null" json:"color"`
	Icon    *string      `gorm:"size:64" json:"icon"`
}
