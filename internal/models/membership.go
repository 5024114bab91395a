package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership roles. The project owner's own membership is always an approved
// admin and can never be re-roled or deleted outside project termination.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

// Membership statuses. A join request starts PENDING; only the owner moves it
// to APPROVED (or deletes it on reject).
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
)

// Membership ties a user to a project with a role and an approval status.
// (project, user) is unique: a user cannot join the same project twice.
type Membership struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"uniqueIndex:idx_membership_project_user;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint           `gorm:"uniqueIndex:idx_membership_project_user;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string         `gorm:"size:10;default:VIEWER" json:"role"`
	Status    string         `gorm:"size:10;default:PENDING" json:"status"`
	CreatedAt time.Time      `json:"joined_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Membership) TableName() string { return "memberships" }

// ValidRole reports whether role is one of the assignable membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}
