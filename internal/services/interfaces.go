package services

import (
	"context"
	"io"
	"time"

	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/pagination"
	"spacebudget/internal/types"
)

// AccessGuard resolves a space slug to its id for a member of that space.
// A missing space and a space the caller does not belong to are reported
// identically, as ErrForbidden.
type AccessGuard interface {
	AssertSpaceAccess(ctx context.Context, userID, slug string) (string, error)
}

// SpaceWithRole is a space together with the caller's role in it.
type SpaceWithRole struct {
	models.Space
	Role models.MemberRole `json:"role"`
}

// UpdateSpaceInput holds the optional fields of a space update.
type UpdateSpaceInput struct {
	Name *string
	Slug *string
}

// SpaceServicer defines the contract for spaces and their membership.
type SpaceServicer interface {
	AccessGuard
	CreateSpace(ctx context.Context, userID, name string) (*models.Space, error)
	ListMySpaces(ctx context.Context, userID string) ([]SpaceWithRole, error)
	GetSpace(ctx context.Context, userID, slug string) (*SpaceWithRole, error)
	UpdateSpace(ctx context.Context, userID, slug string, in UpdateSpaceInput) (*models.Space, error)
	ListMembers(ctx context.Context, userID, slug string) ([]models.Member, error)
	AddMember(ctx context.Context, userID, slug, memberID string, role models.MemberRole) (*models.Member, error)
	RemoveMember(ctx context.Context, userID, slug, memberID string) (*string, error)
}

// ProfileServicer defines the contract for user profiles.
type ProfileServicer interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, userID, name, avatarURL string) (*models.Profile, error)
}

// CategoryFilter holds optional filters for listing categories.
type CategoryFilter struct {
	Query string
	Kind  *models.CategoryKind
}

// CategoryInput holds the fields of a new category.
type CategoryInput struct {
	Name  string
	Kind  models.CategoryKind
	Color string
	Icon  *string
}

// CategoryPatch holds the optional fields of a category update.
type CategoryPatch struct {
	Name  *string
	Kind  *models.CategoryKind
	Color *string
	Icon  *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(ctx context.Context, userID, slug string, filter CategoryFilter, page pagination.CursorRequest) (*pagination.Page[models.Category], error)
	CreateCategory(ctx context.Context, userID, slug string, in CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, slug, categoryID string, patch CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, slug, categoryID string) (*string, error)
}

// HoldingFilter holds optional filters for listing holdings.
type HoldingFilter struct {
	Query string
	Type  *models.HoldingType
}

// HoldingInput holds the fields of a new holding.
type HoldingInput struct {
	Name           string
	Type           models.HoldingType
	Color          string
	Currency       string
	OpeningBalance money.Amount
}

// HoldingPatch holds the optional fields of a holding update.
type HoldingPatch struct {
	Name           *string
	Type           *models.HoldingType
	Color          *string
	Currency       *string
	OpeningBalance *money.Amount
}

// HoldingServicer defines the contract for holding-related business logic.
type HoldingServicer interface {
	ListHoldings(ctx context.Context, userID, slug string, filter HoldingFilter, page pagination.CursorRequest) (*pagination.Page[models.Holding], error)
	CreateHolding(ctx context.Context, userID, slug string, in HoldingInput) (*models.Holding, error)
	UpdateHolding(ctx context.Context, userID, slug, holdingID string, patch HoldingPatch) (*models.Holding, error)
	DeleteHolding(ctx context.Context, userID, slug, holdingID string) (*string, error)
}

// TransactionFilter holds optional filters for listing transactions.
// From and To accept RFC 3339 timestamps or YYYY-MM-DD dates; a date-only
// To covers that whole day in the business timezone.
type TransactionFilter struct {
	Query      string
	Types      []ledger.Type
	CategoryID *string
	HoldingID  *string
	From       string
	To         string
}

// NewTransaction is a validated transaction to create.
type NewTransaction struct {
	Draft      ledger.Draft
	Amount     money.Amount
	OccurredAt time.Time
	Memo       *string
}

// TransactionPatch holds the optional fields of a transaction update.
type TransactionPatch struct {
	ledger.Patch
	Amount     *money.Amount
	OccurredAt *time.Time
	Memo       *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	ListTransactions(ctx context.Context, userID, slug string, filter TransactionFilter, page pagination.CursorRequest) (*pagination.Page[models.Transaction], error)
	GetTransaction(ctx context.Context, userID, slug, transactionID string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, userID, slug string, in NewTransaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, slug, transactionID string, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, slug, transactionID string) (*string, error)
}

// BudgetProgress is the spend against one budgeted category in a month.
type BudgetProgress struct {
	BudgetID      string       `json:"budget_id"`
	CategoryID    string       `json:"category_id"`
	CategoryName  string       `json:"category_name"`
	CategoryColor string       `json:"category_color"`
	CategoryIcon  *string      `json:"category_icon"`
	Month         types.Month  `json:"month"`
	Limit         money.Amount `json:"limit"`
	Spent         money.Amount `json:"spent"`
	Remaining     money.Amount `json:"remaining"`
}

// UpsertBudgetInput sets the limit of a category for a month.
type UpsertBudgetInput struct {
	CategoryID string
	Month      types.Month
	Amount     money.Amount
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	ListBudgets(ctx context.Context, userID, slug string, month types.Month) ([]BudgetProgress, error)
	UpsertBudget(ctx context.Context, userID, slug string, in UpsertBudgetInput) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, slug, categoryID string, month types.Month) (*string, error)
	ListBudgetHistory(ctx context.Context, userID, slug, categoryID string, month *types.Month, page pagination.CursorRequest) (*pagination.Page[models.BudgetHistory], error)
}

// FormOptions are the choices offered when entering a transaction.
type FormOptions struct {
	Categories []models.Category `json:"categories"`
	Holdings   []models.Holding  `json:"holdings"`
}

// HoldingBalance is a holding with its balance over all transactions.
type HoldingBalance struct {
	HoldingID string       `json:"holding_id"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Currency  string       `json:"currency"`
	Balance   money.Amount `json:"balance"`
}

// MonthSummary is the dashboard view of one month.
type MonthSummary struct {
	Month       types.Month      `json:"month"`
	Income      money.Amount     `json:"income"`
	Expense     money.Amount     `json:"expense"`
	TotalAssets money.Amount     `json:"total_assets"`
	Holdings    []HoldingBalance `json:"holdings"`
	Budgets     []BudgetProgress `json:"budgets"`
}

// SummaryServicer defines the contract for read-only dashboard views.
type SummaryServicer interface {
	FormOptions(ctx context.Context, userID, slug string) (*FormOptions, error)
	MonthSummary(ctx context.Context, userID, slug string, month types.Month) (*MonthSummary, error)
}

// ExportServicer defines the contract for spreadsheet exports.
type ExportServicer interface {
	ExportTransactions(ctx context.Context, userID, slug string, month types.Month, w io.Writer) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, slug, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
