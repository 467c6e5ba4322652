package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/models"
	"spacebudget/internal/slug"
	"spacebudget/internal/uuid"
)

// maxSlugAttempts bounds the retries when a generated slug collides.
const maxSlugAttempts = 5

const maxSpaceNameLength = 100

// spaceService handles spaces, their membership and the access guard.
type spaceService struct {
	db      *gorm.DB
	newSlug func(name string) (string, error)
}

// NewSpaceService creates a new SpaceServicer.
func NewSpaceService(db *gorm.DB) SpaceServicer {
	return &spaceService{db: db, newSlug: slug.Generate}
}

type membership struct {
	SpaceID string
	Role    models.MemberRole
}

func (s *spaceService) membership(ctx context.Context, userID, slug string) (*membership, error) {
	var m membership
	res := s.db.WithContext(ctx).Table("spaces").
		Select("spaces.id AS space_id, space_members.role AS role").
		Joins("JOIN space_members ON space_members.space_id = spaces.id").
		Where("spaces.slug = ? AND space_members.user_id = ?", slug, userID).
		Limit(1).
		Scan(&m)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrForbidden
	}
	return &m, nil
}

func (s *spaceService) ownership(ctx context.Context, userID, slug string) (*membership, error) {
	m, err := s.membership(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if m.Role != models.MemberRoleOwner {
		return nil, apperrors.ErrNotOwner
	}
	return m, nil
}

// AssertSpaceAccess returns the id of the space with the given slug if the
// user is a member of it.
func (s *spaceService) AssertSpaceAccess(ctx context.Context, userID, slug string) (string, error) {
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	m, err := s.membership(ctx, userID, slug)
	if err != nil {
		return "", err
	}
	return m.SpaceID, nil
}

// CreateSpace creates a space owned by the user. The slug is derived from the
// name with a random suffix and regenerated when it collides.
func (s *spaceService) CreateSpace(ctx context.Context, userID, name string) (*models.Space, error) {
	name, err := spaceName(name)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		sl, err := s.newSlug(name)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		space := &models.Space{Name: name, Slug: sl, OwnerID: userID}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(space).Error; err != nil {
				return err
			}
			owner := &models.Member{SpaceID: space.ID, UserID: userID, Role: models.MemberRoleOwner}
			return tx.Create(owner).Error
		})
		if err == nil {
			return space, nil
		}
		if !apperrors.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return nil, apperrors.ErrSlugTaken
}

// ListMySpaces returns the spaces the user belongs to, newest first.
func (s *spaceService) ListMySpaces(ctx context.Context, userID string) ([]SpaceWithRole, error) {
	spaces := []SpaceWithRole{}
	err := s.db.WithContext(ctx).Table("spaces").
		Select("spaces.*, space_members.role AS role").
		Joins("JOIN space_members ON space_members.space_id = spaces.id").
		Where("space_members.user_id = ?", userID).
		Order("spaces.created_at DESC").Order("spaces.id DESC").
		Scan(&spaces).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spaces, nil
}

// GetSpace returns a space the user belongs to.
func (s *spaceService) GetSpace(ctx context.Context, userID, slug string) (*SpaceWithRole, error) {
	m, err := s.membership(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	var space models.Space
	if err := s.db.WithContext(ctx).First(&space, "id = ?", m.SpaceID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &SpaceWithRole{Space: space, Role: m.Role}, nil
}

// UpdateSpace renames a space or changes its slug. Only the owner may do this.
func (s *spaceService) UpdateSpace(ctx context.Context, userID, slugParam string, in UpdateSpaceInput) (*models.Space, error) {
	m, err := s.ownership(ctx, userID, slugParam)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil {
		name, err := spaceName(*in.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.Slug != nil {
		if !slug.Valid(*in.Slug) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"slug must be lowercase letters and digits joined by single hyphens")
		}
		updates["slug"] = *in.Slug
	}
	if len(updates) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	var space models.Space
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&space, "id = ?", m.SpaceID).Error; err != nil {
			return err
		}
		return tx.Model(&space).Updates(updates).Error
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &space, nil
}

// ListMembers returns the members of a space, oldest first.
func (s *spaceService) ListMembers(ctx context.Context, userID, slug string) ([]models.Member, error) {
	spaceID, err := s.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	members := []models.Member{}
	if err := s.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("created_at ASC").Order("user_id ASC").
		Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

// AddMember grants another user access to the space. Only the owner may do this.
func (s *spaceService) AddMember(ctx context.Context, userID, slug, memberID string, role models.MemberRole) (*models.Member, error) {
	m, err := s.ownership(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	if !uuid.IsValid(memberID) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id must be a uuid")
	}
	if role == "" {
		role = models.MemberRoleMember
	}
	if role != models.MemberRoleMember {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a space has exactly one owner")
	}

	member := &models.Member{SpaceID: m.SpaceID, UserID: memberID, Role: role}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrMemberExists
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// RemoveMember revokes a user's access. The owner may remove anyone but
// themselves; members may only remove themselves. Removing a user who is not
// a member returns nil.
func (s *spaceService) RemoveMember(ctx context.Context, userID, slug, memberID string) (*string, error) {
	m, err := s.membership(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if m.Role != models.MemberRoleOwner && memberID != userID {
		return nil, apperrors.ErrNotOwner
	}

	var target models.Member
	err = s.db.WithContext(ctx).Where("space_id = ? AND user_id = ?", m.SpaceID, memberID).First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if target.Role == models.MemberRoleOwner {
		return nil, apperrors.ErrOwnerRemoval
	}

	res := s.db.WithContext(ctx).Where("space_id = ? AND user_id = ?", m.SpaceID, memberID).Delete(&models.Member{})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &memberID, nil
}

func spaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "space name is required")
	}
	if utf8.RuneCountInString(name) > maxSpaceNameLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "space name must be at most 100 characters")
	}
	return name, nil
}
