package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

// AlertService manages reviewer-raised alerts. It implements the realtime
// layer's unresolved-count lookup so alert_update broadcasts always carry a
// fresh number.
type AlertService struct {
	db *gorm.DB
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db}
}

type CreateAlertRequest struct {
	Message    string `json:"message" binding:"required"`
	FileID     *uint  `json:"file_id"`
	LineNumber *int   `json:"line_number"`
}

// List returns a project's alerts, unresolved first, newest within each group.
func (s *AlertService) List(projectID uint) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := s.db.Where("project_id = ?", projectID).
		Preload("Sender").
		Order("is_resolved ASC, created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *AlertService) Create(projectID, senderID uint, req *CreateAlertRequest) (*models.Alert, error) {
	alert := models.Alert{
		ProjectID:  projectID,
		SenderID:   senderID,
		Message:    req.Message,
		FileID:     req.FileID,
		LineNumber: req.LineNumber,
	}
	if err := s.db.Create(&alert).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Sender").First(&alert, alert.ID).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// Resolve marks an alert handled. Resolving twice is a no-op.
func (s *AlertService) Resolve(projectID, alertID uint) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.Where("id = ? AND project_id = ?", alertID, projectID).
		Preload("Sender").
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("alert not found")
		}
		return nil, err
	}

	if !alert.IsResolved {
		if err := s.db.Model(&alert).Update("is_resolved", true).Error; err != nil {
			return nil, err
		}
		alert.IsResolved = true
	}
	return &alert, nil
}

// UnresolvedCount satisfies realtime.AlertCounter.
func (s *AlertService) UnresolvedCount(projectID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Alert{}).
		Where("project_id = ? AND is_resolved = ?", projectID, false).
		Count(&count).Error
	return count, err
}
