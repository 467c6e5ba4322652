package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/models"
	"spacebudget/internal/pagination"
)

// holdingService handles holding-related business logic.
type holdingService struct {
	db    *gorm.DB
	guard AccessGuard
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(db *gorm.DB, guard AccessGuard) HoldingServicer {
	return &holdingService{db: db, guard: guard}
}

// ListHoldings returns a page of the space's holdings, newest first.
func (s *holdingService) ListHoldings(
	ctx context.Context,
	userID, slug string,
	filter HoldingFilter,
	page pagination.CursorRequest,
) (*pagination.Page[models.Holding], error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	page.Normalize()
	after, err := pagination.Decode(page.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidCursor, err)
	}

	query := s.db.WithContext(ctx).Where("space_id = ?", spaceID)
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(q))
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var holdings []models.Holding
	if err := query.Scopes(pagination.Seek("created_at", "id", after, page.Limit)).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(holdings, page.Limit, func(h models.Holding) pagination.Cursor {
		return pagination.Cursor{SortKey: h.CreatedAt, ID: h.ID}
	})
	return &result, nil
}

// CreateHolding creates a holding in the space.
func (s *holdingService) CreateHolding(ctx context.Context, userID, slug string, in HoldingInput) (*models.Holding, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "holding name is required")
	}
	if !in.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be one of bank, card, cash, etc")
	}
	if in.OpeningBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "opening balance must not be negative")
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = models.DefaultCurrency
	}

	holding := &models.Holding{
		SpaceID:        spaceID,
		Name:           name,
		Type:           in.Type,
		Color:          in.Color,
		Currency:       currency,
		OpeningBalance: in.OpeningBalance,
	}
	if err := s.db.WithContext(ctx).Create(holding).Error; err != nil {
		return nil, nameConflict(err, "holding")
	}
	return holding, nil
}

// UpdateHolding applies a partial update to a holding of the space.
func (s *holdingService) UpdateHolding(
	ctx context.Context,
	userID, slug, holdingID string,
	patch HoldingPatch,
) (*models.Holding, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "holding name is required")
		}
		updates["name"] = name
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be one of bank, card, cash, etc")
		}
		updates["type"] = *patch.Type
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.Currency != nil {
		currency := strings.TrimSpace(*patch.Currency)
		if currency == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency is required")
		}
		updates["currency"] = currency
	}
	if patch.OpeningBalance != nil {
		if patch.OpeningBalance.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "opening balance must not be negative")
		}
		updates["opening_balance"] = *patch.OpeningBalance
	}
	if len(updates) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	var holding models.Holding
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND space_id = ?", holdingID, spaceID).First(&holding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrHoldingNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&holding).Updates(updates).Error; err != nil {
			return nameConflict(err, "holding")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// DeleteHolding deletes a holding of the space. Deleting a holding that does
// not exist returns nil; deleting one still referenced by transactions fails.
func (s *holdingService) DeleteHolding(ctx context.Context, userID, slug, holdingID string) (*string, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	var deleted *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Holding{}).Where("id = ? AND space_id = ?", holdingID, spaceID).Count(&found).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if found == 0 {
			return nil
		}

		var refs int64
		if err := tx.Model(&models.Transaction{}).
			Where("from_holding_id = ? OR to_holding_id = ?", holdingID, holdingID).
			Count(&refs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if refs > 0 {
			return apperrors.ErrHoldingInUse
		}

		res := tx.Where("id = ? AND space_id = ?", holdingID, spaceID).Delete(&models.Holding{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected > 0 {
			deleted = &holdingID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
