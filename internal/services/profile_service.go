package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/models"
)

// profileService handles display profiles of authenticated users.
type profileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(db *gorm.DB) ProfileServicer {
	return &profileService{db: db}
}

// GetProfile returns the user's profile.
func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileMissing
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces the user's profile.
func (s *profileService) UpsertProfile(ctx context.Context, userID, name, avatarURL string) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		AvatarURL: strings.TrimSpace(avatarURL),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "avatar_url", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetProfile(ctx, userID)
}
