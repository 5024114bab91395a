package models

import (
	"time"

	"gorm.io/gorm"
)

// Folder is a node in a project's file tree. A nil ParentID marks a top-level
// folder.
type Folder struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	ParentID  *uint          `gorm:"index" json:"parent_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Folder) TableName() string { return "folders" }

// File holds shared source code. FolderID nil puts the file at the project
// root.
type File struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	FolderID  *uint          `gorm:"index" json:"folder_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Language  string         `gorm:"size:50" json:"language"`
	Content   string         `gorm:"type:text" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (File) TableName() string { return "files" }
