package models

import (
	"time"

	"gorm.io/gorm"
)

// Document is a shared piece of project documentation.
type Document struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ProjectID       uint           `gorm:"index;not null" json:"project_id"`
	Project         *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Content         string         `gorm:"type:text" json:"content"`
	LastUpdatedByID *uint          `json:"last_updated_by_id"`
	LastUpdatedBy   *User          `gorm:"foreignKey:LastUpdatedByID" json:"last_updated_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "documents" }
