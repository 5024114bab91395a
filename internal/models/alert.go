package models

import (
	"time"

	"gorm.io/gorm"
)

// Alert is a reviewer-raised flag on a project, optionally pinned to a file
// and line. Mutations trigger an alert_update broadcast carrying the current
// unresolved count.
type Alert struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"index;not null" json:"project_id"`
	Project    *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	SenderID   uint           `gorm:"index;not null" json:"sender_id"`
	Sender     *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	IsResolved bool           `gorm:"default:false;index" json:"is_resolved"`
	FileID     *uint          `json:"file_id"`
	LineNumber *int           `json:"line_number"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Alert) TableName() string { return "alerts" }
