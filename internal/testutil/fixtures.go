package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/types"
	"spacebudget/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh identity-provider subject.
func NewUserID() string {
	return uuid.New()
}

// CreateTestSpace creates a space owned by ownerID, including the owner's membership.
func CreateTestSpace(t *testing.T, db *gorm.DB, ownerID string) *models.Space {
	t.Helper()

	n := nextID()
	space := &models.Space{
		Name:    fmt.Sprintf("Space %d", n),
		Slug:    fmt.Sprintf("space-%d", n),
		OwnerID: ownerID,
	}
	if err := db.Create(space).Error; err != nil {
		t.Fatalf("failed to create test space: %v", err)
	}
	AddTestMember(t, db, space.ID, ownerID, models.MemberRoleOwner)
	return space
}

// AddTestMember grants userID the given role in a space.
func AddTestMember(t *testing.T, db *gorm.DB, spaceID, userID string, role models.MemberRole) *models.Member {
	t.Helper()

	member := &models.Member{SpaceID: spaceID, UserID: userID, Role: role}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
	return member
}

// CreateTestCategory creates a category of the given kind with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, spaceID string, kind models.CategoryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		SpaceID: spaceID,
		Name:    fmt.Sprintf("Category %d", nextID()),
		Kind:    kind,
		Color:   "#FF8800",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestHolding creates a bank holding with the given opening balance.
func CreateTestHolding(t *testing.T, db *gorm.DB, spaceID, openingBalance string) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		SpaceID:        spaceID,
		Name:           fmt.Sprintf("Holding %d", nextID()),
		Type:           models.HoldingTypeBank,
		Color:          "#0088FF",
		Currency:       models.DefaultCurrency,
		OpeningBalance: money.MustParse(openingBalance),
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestTransaction inserts a transaction directly, bypassing the service.
func CreateTestTransaction(t *testing.T, db *gorm.DB, spaceID, userID string, row ledger.Row, amount string, occurredAt time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		SpaceID:       spaceID,
		Type:          row.Type,
		Amount:        money.MustParse(amount),
		OccurredAt:    occurredAt,
		CategoryID:    row.CategoryID,
		FromHoldingID: row.FromHoldingID,
		ToHoldingID:   row.ToHoldingID,
		CreatedBy:     userID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestBudget creates a budget without history.
func CreateTestBudget(t *testing.T, db *gorm.DB, spaceID, categoryID string, month types.Month, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		SpaceID:    spaceID,
		CategoryID: categoryID,
		Month:      month,
		Amount:     money.MustParse(amount),
		CreatedBy:  NewUserID(),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
