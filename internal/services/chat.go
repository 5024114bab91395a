package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

// ChatService persists room chat. Messages are append-only; the realtime
// layer calls Append before broadcasting so storage and room never disagree.
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// Append stores one chat message for a project.
func (s *ChatService) Append(projectID, userID uint, text string) error {
	if text == "" {
		return errors.New("empty chat message")
	}

	msg := models.ChatMessage{
		ProjectID: projectID,
		UserID:    userID,
		Text:      text,
	}
	return s.db.Create(&msg).Error
}

// History returns a project's chat messages in send order, oldest first.
func (s *ChatService) History(projectID uint) ([]models.ChatMessage, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	var messages []models.ChatMessage
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
