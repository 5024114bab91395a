package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/logger"
)

// PermissionService answers project access questions. It is the single
// authority consulted at websocket connect time and by REST handlers that
// gate on membership.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// CanView reports whether the user is the project owner or an approved member.
// Lookup failures deny access rather than propagate.
func (s *PermissionService) CanView(userID, projectID uint) bool {
	if s.isOwner(userID, projectID) {
		return true
	}

	m, err := s.approvedMembership(userID, projectID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error().Err(err).Uint("user_id", userID).Uint("project_id", projectID).Msg("membership lookup failed, denying view")
		}
		return false
	}
	return m != nil
}

// CanEdit reports whether the user may mutate shared code state: the project
// owner, or an approved member holding the admin or editor role.
func (s *PermissionService) CanEdit(userID, projectID uint) bool {
	if s.isOwner(userID, projectID) {
		return true
	}

	m, err := s.approvedMembership(userID, projectID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error().Err(err).Uint("user_id", userID).Uint("project_id", projectID).Msg("membership lookup failed, denying edit")
		}
		return false
	}
	return m.Role == models.RoleAdmin || m.Role == models.RoleEditor
}

// IsOwner reports whether the user owns the project.
func (s *PermissionService) IsOwner(userID, projectID uint) bool {
	return s.isOwner(userID, projectID)
}

func (s *PermissionService) isOwner(userID, projectID uint) bool {
	var count int64
	if err := s.db.Model(&models.Project{}).
		Where("id = ? AND owner_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		logger.Error().Err(err).Uint("user_id", userID).Uint("project_id", projectID).Msg("owner lookup failed, denying")
		return false
	}
	return count > 0
}

func (s *PermissionService) approvedMembership(userID, projectID uint) (*models.Membership, error) {
	var m models.Membership
	if err := s.db.Where("project_id = ? AND user_id = ? AND status = ?",
		projectID, userID, models.StatusApproved).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
