package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

// DocumentService manages shared project documentation. Content edits record
// who made them; the handler broadcasts the change to the room afterwards.
type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content"`
}

type UpdateDocumentRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// List returns a project's documents, most recently updated first.
func (s *DocumentService) List(projectID uint) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Where("project_id = ?", projectID).
		Preload("LastUpdatedBy").
		Order("updated_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *DocumentService) Get(projectID, docID uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Where("id = ? AND project_id = ?", docID, projectID).
		Preload("LastUpdatedBy").
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("document not found")
		}
		return nil, err
	}
	return &doc, nil
}

func (s *DocumentService) Create(projectID, authorID uint, req *CreateDocumentRequest) (*models.Document, error) {
	doc := models.Document{
		ProjectID:       projectID,
		Title:           req.Title,
		Content:         req.Content,
		LastUpdatedByID: &authorID,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return s.Get(projectID, doc.ID)
}

// Update edits a document and stamps the editor as its last updater.
func (s *DocumentService) Update(projectID, docID, editorID uint, req *UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.Get(projectID, docID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"last_updated_by_id": editorID,
	}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}

	if err := s.db.Model(doc).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(projectID, docID)
}

func (s *DocumentService) Delete(projectID, docID uint) error {
	result := s.db.Where("id = ? AND project_id = ?", docID, projectID).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("document not found")
	}
	return nil
}
