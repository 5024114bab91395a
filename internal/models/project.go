package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a collaborative coding workspace. The owner always holds
// an approved admin membership, created in the same transaction as the project.
type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	OwnerID   uint           `gorm:"index;not null" json:"owner_id"`
	Owner     *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	RoomCode  string         `gorm:"uniqueIndex;size:12;not null" json:"room_code"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// ProjectSummary is the payload shape pushed to a user's notification channel
// when their join request is approved.
type ProjectSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Project) Summary() ProjectSummary {
	s := ProjectSummary{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
	if p.Owner != nil {
		s.Owner = p.Owner.Username
	}
	return s
}
