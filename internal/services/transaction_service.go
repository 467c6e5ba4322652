package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/pagination"
	"spacebudget/internal/uuid"
)

const maxMemoLength = 500

// transactionService handles transaction-related business logic.
type transactionService struct {
	db    *gorm.DB
	guard AccessGuard
	loc   *time.Location
}

// NewTransactionService creates a new TransactionServicer. loc is the
// business timezone used to interpret date-only filters.
func NewTransactionService(db *gorm.DB, guard AccessGuard, loc *time.Location) TransactionServicer {
	return &transactionService{db: db, guard: guard, loc: loc}
}

// ListTransactions returns a page of the space's transactions, most recent first.
func (s *transactionService) ListTransactions(
	ctx context.Context,
	userID, slug string,
	filter TransactionFilter,
	page pagination.CursorRequest,
) (*pagination.Page[models.Transaction], error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	page.Normalize()
	after, err := pagination.Decode(page.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidCursor, err)
	}

	query, err := applyTransactionFilters(s.db.WithContext(ctx).Where("space_id = ?", spaceID), filter, s.loc)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := query.Scopes(pagination.Seek("occurred_at", "id", after, page.Limit)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(transactions, page.Limit, func(t models.Transaction) pagination.Cursor {
		return pagination.Cursor{SortKey: t.OccurredAt, ID: t.ID}
	})
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter, loc *time.Location) (*gorm.DB, error) {
	if memo := strings.TrimSpace(f.Query); memo != "" {
		q = q.Where(`LOWER(memo) LIKE ? ESCAPE '\'`, containsPattern(memo))
	}
	if len(f.Types) > 0 {
		for _, t := range f.Types {
			if !t.Valid() {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionType, "unsupported transaction type "+string(t))
			}
		}
		q = q.Where("type IN ?", f.Types)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.HoldingID != nil {
		q = q.Where("(from_holding_id = ? OR to_holding_id = ?)", *f.HoldingID, *f.HoldingID)
	}
	if f.From != "" {
		from, err := parseBound(f.From, loc, false)
		if err != nil {
			return nil, err
		}
		q = q.Where("occurred_at >= ?", from)
	}
	if f.To != "" {
		to, err := parseBound(f.To, loc, true)
		if err != nil {
			return nil, err
		}
		q = q.Where("occurred_at <= ?", to)
	}
	return q, nil
}

// parseBound reads an RFC 3339 timestamp or a YYYY-MM-DD date in loc. For an
// upper bound a date means the last instant of that day.
func parseBound(s string, loc *time.Location, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "dates must be RFC 3339 or YYYY-MM-DD")
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return d.UTC(), nil
}

// GetTransaction returns one transaction of the space.
func (s *transactionService) GetTransaction(ctx context.Context, userID, slug, transactionID string) (*models.Transaction, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	return findTransaction(s.db.WithContext(ctx), spaceID, transactionID)
}

func findTransaction(db *gorm.DB, spaceID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND space_id = ?", transactionID, spaceID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// CreateTransaction records a transaction. Only the references its variant
// carries are written; the others are omitted from the insert.
func (s *transactionService) CreateTransaction(ctx context.Context, userID, slug string, in NewTransaction) (*models.Transaction, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	if in.Draft == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type is required")
	}
	row := in.Draft.Row()
	if err := ledger.Check(row); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.OccurredAt.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "occurred_at is required")
	}
	memo, err := normalizeMemo(in.Memo)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		SpaceID:       spaceID,
		Type:          row.Type,
		Amount:        in.Amount,
		OccurredAt:    in.OccurredAt.UTC(),
		Memo:          memo,
		CategoryID:    row.CategoryID,
		FromHoldingID: row.FromHoldingID,
		ToHoldingID:   row.ToHoldingID,
		CreatedBy:     userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := verifyReferences(tx, spaceID, row.Refs); err != nil {
			return err
		}
		if err := tx.Omit(absentReferences(row.Refs)...).Create(transaction).Error; err != nil {
			return asAppError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// UpdateTransaction applies a partial update. The effective type and the
// final references are resolved against the stored row before anything is
// written, and the reference columns are always written together so that a
// type change cannot leave a stale reference behind.
func (s *transactionService) UpdateTransaction(
	ctx context.Context,
	userID, slug, transactionID string,
	patch TransactionPatch,
) (*models.Transaction, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.OccurredAt != nil {
		if patch.OccurredAt.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "occurred_at must be a valid time")
		}
		updates["occurred_at"] = patch.OccurredAt.UTC()
	}
	if patch.Memo != nil {
		memo, err := normalizeMemo(patch.Memo)
		if err != nil {
			return nil, err
		}
		updates["memo"] = memo
	}

	var result *models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findTransaction(tx, spaceID, transactionID)
		if err != nil {
			return err
		}

		row, err := ledger.Resolve(current.Row(), patch.Patch)
		if err != nil {
			return err
		}
		if err := verifyReferences(tx, spaceID, row.Refs); err != nil {
			return err
		}

		updates["type"] = row.Type
		updates["category_id"] = row.CategoryID
		updates["from_holding_id"] = row.FromHoldingID
		updates["to_holding_id"] = row.ToHoldingID

		if err := tx.Model(current).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result, err = findTransaction(tx, spaceID, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTransaction deletes a transaction of the space. Deleting one that
// does not exist returns nil.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, slug, transactionID string) (*string, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Where("id = ? AND space_id = ?", transactionID, spaceID).Delete(&models.Transaction{})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &transactionID, nil
}

// verifyReferences checks that every referenced category and holding exists
// in the space.
func verifyReferences(tx *gorm.DB, spaceID string, refs ledger.Refs) error {
	categories, holdings := refs.IDs()
	for _, id := range append(append([]string{}, categories...), holdings...) {
		if !uuid.IsValid(id) {
			return apperrors.WithMessage(apperrors.ErrInvalidReference, "references must be uuids")
		}
	}

	if len(categories) > 0 {
		var count int64
		if err := tx.Model(&models.Category{}).Where("space_id = ? AND id IN ?", spaceID, categories).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if int(count) != len(categories) {
			return apperrors.WithMessage(apperrors.ErrInvalidReference, "category does not belong to this space")
		}
	}
	if len(holdings) > 0 {
		var count int64
		if err := tx.Model(&models.Holding{}).Where("space_id = ? AND id IN ?", spaceID, holdings).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if int(count) != len(holdings) {
			return apperrors.WithMessage(apperrors.ErrInvalidReference, "holding does not belong to this space")
		}
	}
	return nil
}

func absentReferences(refs ledger.Refs) []string {
	var columns []string
	if refs.CategoryID == nil {
		columns = append(columns, "category_id")
	}
	if refs.FromHoldingID == nil {
		columns = append(columns, "from_holding_id")
	}
	if refs.ToHoldingID == nil {
		columns = append(columns, "to_holding_id")
	}
	return columns
}

// normalizeMemo trims the memo; blank memos are stored as NULL.
func normalizeMemo(memo *string) (*string, error) {
	if memo == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*memo)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxMemoLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "memo must be at most 500 characters")
	}
	return &trimmed, nil
}

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
