package services

import (
	"crypto/rand"
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

const roomCodeLength = 8

// roomCodeCharset avoids lookalike characters since codes are shared verbally.
const roomCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Create creates a project with a unique room code and the owner's approved
// admin membership, all in one transaction.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID uint) (*models.Project, error) {
	code, err := s.generateRoomCode()
	if err != nil {
		return nil, err
	}

	project := models.Project{
		Name:     req.Name,
		OwnerID:  ownerID,
		RoomCode: code,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		membership := models.Membership{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.RoleAdmin,
			Status:    models.StatusApproved,
		}
		return tx.Create(&membership).Error
	}); err != nil {
		return nil, err
	}

	return &project, nil
}

// ListMine returns every project the user owns or is an approved member of,
// newest first.
func (s *ProjectService) ListMine(userID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.
		Joins("JOIN memberships ON memberships.project_id = projects.id").
		Where("memberships.user_id = ? AND memberships.status = ? AND memberships.deleted_at IS NULL",
			userID, models.StatusApproved).
		Preload("Owner").
		Order("projects.created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Owner").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Terminate deletes a project and everything under it. Owner only.
func (s *ProjectService) Terminate(projectID, userID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("project not found")
		}
		return err
	}
	if project.OwnerID != userID {
		return response.NewForbidden("only the owner can terminate a project")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Membership{}, &models.File{}, &models.Folder{},
			&models.Document{}, &models.Alert{},
		} {
			if err := tx.Where("project_id = ?", projectID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

// generateRoomCode produces an unused room code, retrying on the unlikely
// collision.
func (s *ProjectService) generateRoomCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i, b := range buf {
			buf[i] = roomCodeCharset[int(b)%len(roomCodeCharset)]
		}
		code := string(buf)

		var count int64
		if err := s.db.Model(&models.Project{}).Where("room_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique room code")
}
