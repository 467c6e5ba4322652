package services

import (
	"context"
	"encoding/json"

	"spacebudget/internal/logger"
	"spacebudget/internal/models"

	"gorm.io/gorm"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event against the space with the given slug, or
// against no space when slug is empty. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(ctx context.Context, userID, slug, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	db := s.db.WithContext(ctx)
	if slug != "" {
		var ids []string
		if err := db.Model(&models.Space{}).Where("slug = ?", slug).Limit(1).Pluck("id", &ids).Error; err != nil {
			logger.Get().Errorw("failed to resolve audit log space", "error", err, "slug", slug)
		} else if len(ids) == 1 {
			entry.SpaceID = &ids[0]
		}
	}

	if err := db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
