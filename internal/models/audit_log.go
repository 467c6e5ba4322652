package models

import (
	"time"

	"spacebudget/internal/uuid"

	"gorm.io/gorm"
)

// AuditLog records who changed what within a space. Rows are never updated.
type AuditLog struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	SpaceID      *string   `gorm:"type:uuid;index" json:"space_id,omitempty"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string    `gorm:"not null" json:"action"`
	ResourceType string    `gorm:"not null" json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	IPAddress    string    `json:"ip_address"`
	Changes      string    `json:"changes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new audit rows
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}
