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

// categoryService handles category-related business logic.
type categoryService struct {
	db    *gorm.DB
	guard AccessGuard
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, guard AccessGuard) CategoryServicer {
	return &categoryService{db: db, guard: guard}
}

// ListCategories returns a page of the space's categories, newest first.
func (s *categoryService) ListCategories(
	ctx context.Context,
	userID, slug string,
	filter CategoryFilter,
	page pagination.CursorRequest,
) (*pagination.Page[models.Category], error) {
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
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}

	var categories []models.Category
	if err := query.Scopes(pagination.Seek("created_at", "id", after, page.Limit)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(categories, page.Limit, func(c models.Category) pagination.Cursor {
		return pagination.Cursor{SortKey: c.CreatedAt, ID: c.ID}
	})
	return &result, nil
}

// CreateCategory creates a category in the space.
func (s *categoryService) CreateCategory(ctx context.Context, userID, slug string, in CategoryInput) (*models.Category, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !in.Kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be expense or income")
	}

	category := &models.Category{
		SpaceID: spaceID,
		Name:    name,
		Kind:    in.Kind,
		Color:   in.Color,
		Icon:    in.Icon,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, nameConflict(err, "category")
	}
	return category, nil
}

// UpdateCategory applies a partial update to a category of the space.
func (s *categoryService) UpdateCategory(
	ctx context.Context,
	userID, slug, categoryID string,
	patch CategoryPatch,
) (*models.Category, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		updates["name"] = name
	}
	if patch.Kind != nil {
		if !patch.Kind.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be expense or income")
		}
		updates["kind"] = *patch.Kind
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.Icon != nil {
		if *patch.Icon == "" {
			updates["icon"] = nil
		} else {
			updates["icon"] = *patch.Icon
		}
	}
	if len(updates) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	var category models.Category
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND space_id = ?", categoryID, spaceID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Budgets may only point at expense categories.
		if patch.Kind != nil && *patch.Kind == models.CategoryKindIncome && category.Kind != models.CategoryKindIncome {
			var budgets int64
			if err := tx.Model(&models.Budget{}).Where("category_id = ?", category.ID).Count(&budgets).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if budgets > 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidCategoryKind, "category has budgets and must stay an expense category")
			}
		}

		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return nameConflict(err, "category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category of the space. Deleting a category that
// does not exist returns nil; deleting one still referenced by transactions
// or budgets fails.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, slug, categoryID string) (*string, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	var deleted *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Category{}).Where("id = ? AND space_id = ?", categoryID, spaceID).Count(&found).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if found == 0 {
			return nil
		}

		var refs int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&refs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if refs == 0 {
			if err := tx.Model(&models.Budget{}).Where("category_id = ?", categoryID).Count(&refs).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if refs > 0 {
			return apperrors.ErrCategoryInUse
		}

		res := tx.Where("id = ? AND space_id = ?", categoryID, spaceID).Delete(&models.Category{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected > 0 {
			deleted = &categoryID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// containsPattern builds a case-insensitive LIKE pattern matching q anywhere.
func containsPattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}

// nameConflict maps a unique violation on a per-space name to ErrDuplicateName.
func nameConflict(err error, what string) error {
	if apperrors.IsUniqueViolation(err) {
		return apperrors.WithMessage(apperrors.ErrDuplicateName, "a "+what+" with this name already exists")
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
