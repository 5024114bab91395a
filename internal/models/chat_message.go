package models

import "time"

// ChatMessage is an append-only room chat record, ordered by CreatedAt
// ascending. Rows are written as a side effect of routed chat_message events.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
