package models

import "time"

// MemberRole is a member's standing within a space
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Valid reports whether r is a known role.
func (r MemberRole) Valid() bool {
	return r == MemberRoleOwner || r == MemberRoleMember
}

// Space is a shared budget and the tenant boundary for every other record
type Space struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	Slug    string `gorm:"size:255;not null;uniqueIndex:u_spaces_slug" json:"slug"`
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
}

// Member grants a user access to a space
type Member struct {
	SpaceID   string     `gorm:"type:uuid;primaryKey" json:"space_id"`
	UserID    string     `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role      MemberRole `gorm:"not null;default:member" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName keeps the membership table name explicit
func (Member) TableName() string {
	return "space_members"
}

// Profile carries display details for an authenticated user
type Profile struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
