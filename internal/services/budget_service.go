package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/ledger"
	"spacebudget/internal/metrics"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/pagination"
	"spacebudget/internal/types"
	"spacebudget/internal/uuid"
)

// upsertAttempts bounds retries when a concurrent request inserts the same budget.
const upsertAttempts = 2

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	guard AccessGuard
	loc   *time.Location
}

// NewBudgetService creates a new BudgetServicer. loc is the business
// timezone month boundaries are computed in.
func NewBudgetService(db *gorm.DB, guard AccessGuard, loc *time.Location) BudgetServicer {
	return &budgetService{db: db, guard: guard, loc: loc}
}

// ListBudgets returns the expense budgets of a month with what has been spent against each.
func (s *budgetService) ListBudgets(ctx context.Context, userID, slug string, month types.Month) ([]BudgetProgress, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, apperrors.ErrInvalidMonth
	}
	return budgetProgress(s.db.WithContext(ctx), spaceID, month, s.loc)
}

type budgetRow struct {
	BudgetID      string
	CategoryID    string
	CategoryName  string
	CategoryColor string
	CategoryIcon  *string
	Month         types.Month
	Amount        money.Amount
}

type categorySpend struct {
	CategoryID string
	Spent      money.Amount
}

// budgetProgress joins a month's budgets with the expense totals of their
// categories over the month's instant range in loc.
func budgetProgress(db *gorm.DB, spaceID string, month types.Month, loc *time.Location) ([]BudgetProgress, error) {
	var rows []budgetRow
	err := db.Table("budgets").
		Select(`budgets.id AS budget_id, budgets.category_id, categories.name AS category_name,
			categories.color AS category_color, categories.icon AS category_icon, budgets.month, budgets.amount`).
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("budgets.space_id = ? AND budgets.month = ? AND categories.kind = ?", spaceID, month, models.CategoryKindExpense).
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	progress := make([]BudgetProgress, 0, len(rows))
	if len(rows) == 0 {
		return progress, nil
	}

	categoryIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		categoryIDs = append(categoryIDs, r.CategoryID)
	}

	start, end := month.Range(loc)
	var sums []categorySpend
	err = db.Model(&models.Transaction{}).
		Select("category_id, COALESCE(SUM(amount), 0) AS spent").
		Where("space_id = ? AND type = ? AND category_id IN ?", spaceID, ledger.Expense, categoryIDs).
		Where("occurred_at BETWEEN ? AND ?", start, end).
		Group("category_id").
		Scan(&sums).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := make(map[string]money.Amount, len(sums))
	for _, sum := range sums {
		spent[sum.CategoryID] = sum.Spent
	}

	for _, r := range rows {
		used, ok := spent[r.CategoryID]
		if !ok {
			used = money.Zero
		}
		progress = append(progress, BudgetProgress{
			BudgetID:      r.BudgetID,
			CategoryID:    r.CategoryID,
			CategoryName:  r.CategoryName,
			CategoryColor: r.CategoryColor,
			CategoryIcon:  r.CategoryIcon,
			Month:         r.Month,
			Limit:         r.Amount,
			Spent:         used,
			Remaining:     r.Amount.Sub(used),
		})
	}
	return progress, nil
}

// UpsertBudget sets the limit of an expense category for a month and
// appends a history row in the same transaction.
func (s *budgetService) UpsertBudget(ctx context.Context, userID, slug string, in UpsertBudgetInput) (*models.Budget, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if in.Month.IsZero() {
		return nil, apperrors.ErrInvalidMonth
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	category, err := s.findCategory(ctx, spaceID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind != models.CategoryKindExpense {
		return nil, apperrors.ErrInvalidCategoryKind
	}

	for attempt := 0; attempt < upsertAttempts; attempt++ {
		budget, created, err := s.upsert(ctx, spaceID, userID, in)
		if err == nil {
			outcome := "updated"
			if created {
				outcome = "created"
			}
			metrics.BudgetUpserts.WithLabelValues(outcome).Inc()
			return budget, nil
		}
		// A concurrent insert won; the next attempt finds its row and updates it.
		if !apperrors.IsUniqueViolation(err) {
			return nil, asAppError(err)
		}
	}

	metrics.BudgetConflicts.Inc()
	return nil, apperrors.ErrBudgetConflict
}

func (s *budgetService) upsert(ctx context.Context, spaceID, userID string, in UpsertBudgetInput) (*models.Budget, bool, error) {
	var budget models.Budget
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := models.BudgetHistory{NewAmount: in.Amount, ChangedBy: userID}

		err := tx.Where("space_id = ? AND category_id = ? AND month = ?", spaceID, in.CategoryID, in.Month).
			First(&budget).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			budget = models.Budget{
				SpaceID:    spaceID,
				CategoryID: in.CategoryID,
				Month:      in.Month,
				Amount:     in.Amount,
				CreatedBy:  userID,
			}
			if err := tx.Create(&budget).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			history.PrevAmount = money.Some(budget.Amount)
			if err := tx.Model(&budget).Update("amount", in.Amount).Error; err != nil {
				return err
			}
			budget.Amount = in.Amount
		}

		history.BudgetID = budget.ID
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &budget, created, nil
}

// DeleteBudget deletes the budget of a category and month. History rows are
// kept. Deleting a budget that does not exist returns nil.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, slug, categoryID string, month types.Month) (*string, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, apperrors.ErrInvalidMonth
	}

	var deleted *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Budget{}).
			Where("space_id = ? AND category_id = ? AND month = ?", spaceID, categoryID, month).
			Limit(1).Pluck("id", &ids).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(ids) == 0 {
			return nil
		}

		res := tx.Where("id = ?", ids[0]).Delete(&models.Budget{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected > 0 {
			deleted = &ids[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ListBudgetHistory returns limit changes of a category, newest first. With
// a month only that month's budget is covered; without one, every budget the
// category currently has.
func (s *budgetService) ListBudgetHistory(
	ctx context.Context,
	userID, slug, categoryID string,
	month *types.Month,
	page pagination.CursorRequest,
) (*pagination.Page[models.BudgetHistory], error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if month != nil && month.IsZero() {
		return nil, apperrors.ErrInvalidMonth
	}

	page.Normalize()
	after, err := pagination.Decode(page.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidCursor, err)
	}

	if _, err := s.findCategory(ctx, spaceID, categoryID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	budgets := db.Model(&models.Budget{}).Select("id").Where("space_id = ? AND category_id = ?", spaceID, categoryID)
	if month != nil {
		budgets = budgets.Where("month = ?", *month)
	}

	var history []models.BudgetHistory
	err = db.Where("budget_id IN (?)", budgets).
		Scopes(pagination.Seek("changed_at", "id", after, page.Limit)).
		Find(&history).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(history, page.Limit, func(h models.BudgetHistory) pagination.Cursor {
		return pagination.Cursor{SortKey: h.ChangedAt, ID: h.ID}
	})
	return &result, nil
}

func (s *budgetService) findCategory(ctx context.Context, spaceID, categoryID string) (*models.Category, error) {
	if !uuid.IsValid(categoryID) {
		return nil, apperrors.ErrCategoryNotFound
	}

	var category models.Category
	err := s.db.WithContext(ctx).Where("id = ? AND space_id = ?", categoryID, spaceID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
