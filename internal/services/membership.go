package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

// MembershipService manages join requests and collaborator roles. Every
// mutation that changes who can reach a room is followed by a realtime
// broadcast, issued by the handler after the write commits.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

type JoinRequest struct {
	RoomCode string `json:"room_code" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// JoinByRoomCode files a pending join request against the project behind the
// room code. The owner and existing members cannot re-join.
func (s *MembershipService) JoinByRoomCode(userID uint, roomCode string) (*models.Project, *models.Membership, error) {
	var project models.Project
	if err := s.db.Where("room_code = ?", roomCode).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("no project with that room code")
		}
		return nil, nil, err
	}

	if project.OwnerID == userID {
		return nil, nil, response.NewConflict("you own this project")
	}

	var existing models.Membership
	err := s.db.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&existing).Error
	if err == nil {
		if existing.Status == models.StatusPending {
			return nil, nil, response.NewConflict("join request already pending")
		}
		return nil, nil, response.NewConflict("already a member of this project")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	membership := models.Membership{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.RoleViewer,
		Status:    models.StatusPending,
	}
	if err := s.db.Create(&membership).Error; err != nil {
		return nil, nil, err
	}
	return &project, &membership, nil
}

// Members returns a project's approved memberships with user records loaded.
func (s *MembershipService) Members(projectID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := s.db.Where("project_id = ? AND status = ?", projectID, models.StatusApproved).
		Preload("User").
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// PendingRequests returns a project's pending join requests. Owner only.
func (s *MembershipService) PendingRequests(projectID, requesterID uint) ([]models.Membership, error) {
	project, err := s.ownedProject(projectID, requesterID)
	if err != nil {
		return nil, err
	}

	var pending []models.Membership
	if err := s.db.Where("project_id = ? AND status = ?", project.ID, models.StatusPending).
		Preload("User").
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

// Approve moves a pending request to approved. Owner only. Returns the
// membership with its user loaded and the project so the caller can notify
// both the room and the approved user.
func (s *MembershipService) Approve(projectID, membershipID, approverID uint) (*models.Membership, *models.Project, error) {
	project, err := s.ownedProject(projectID, approverID)
	if err != nil {
		return nil, nil, err
	}

	var membership models.Membership
	if err := s.db.Preload("User").
		Where("id = ? AND project_id = ?", membershipID, project.ID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("join request not found")
		}
		return nil, nil, err
	}
	if membership.Status != models.StatusPending {
		return nil, nil, response.NewConflict("request is not pending")
	}

	if err := s.db.Model(&membership).Update("status", models.StatusApproved).Error; err != nil {
		return nil, nil, err
	}
	membership.Status = models.StatusApproved

	if err := s.db.Preload("Owner").First(project, project.ID).Error; err != nil {
		return nil, nil, err
	}
	return &membership, project, nil
}

// Reject deletes a pending request. Owner only.
func (s *MembershipService) Reject(projectID, membershipID, rejecterID uint) error {
	project, err := s.ownedProject(projectID, rejecterID)
	if err != nil {
		return err
	}

	// Hard delete: the (project, user) unique index would otherwise block the
	// user from ever asking again.
	result := s.db.Unscoped().
		Where("id = ? AND project_id = ? AND status = ?",
			membershipID, project.ID, models.StatusPending).
		Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("join request not found")
	}
	return nil
}

// UpdateRole changes an approved member's role. Owner only; the owner's own
// membership stays an admin forever.
func (s *MembershipService) UpdateRole(projectID, targetUserID, actorID uint, role string) (*models.Membership, error) {
	if !models.ValidRole(role) {
		return nil, response.NewBadRequest("invalid role")
	}

	project, err := s.ownedProject(projectID, actorID)
	if err != nil {
		return nil, err
	}
	if targetUserID == project.OwnerID {
		return nil, response.NewForbidden("the owner's role cannot be changed")
	}

	var membership models.Membership
	if err := s.db.Preload("User").
		Where("project_id = ? AND user_id = ? AND status = ?",
			project.ID, targetUserID, models.StatusApproved).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	if err := s.db.Model(&membership).Update("role", role).Error; err != nil {
		return nil, err
	}
	membership.Role = role
	return &membership, nil
}

// RemoveResult reports who was removed so the handler can broadcast an
// eviction to the room.
type RemoveResult struct {
	ProjectID       uint
	RemovedUserID   uint
	RemovedUsername string
	SelfLeave       bool
}

// Remove deletes an approved membership. The owner may remove anyone; a
// member may remove themself (leave). The owner can never leave their own
// project.
func (s *MembershipService) Remove(projectID, targetUserID, actorID uint) (*RemoveResult, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if targetUserID == project.OwnerID {
		return nil, response.NewForbidden("the owner cannot leave their own project")
	}
	if actorID != project.OwnerID && actorID != targetUserID {
		return nil, response.NewForbidden("only the owner can remove other members")
	}

	var membership models.Membership
	if err := s.db.Preload("User").
		Where("project_id = ? AND user_id = ?", project.ID, targetUserID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	// Hard delete so the user can join again later through a fresh request.
	if err := s.db.Unscoped().Delete(&membership).Error; err != nil {
		return nil, err
	}

	result := &RemoveResult{
		ProjectID:     project.ID,
		RemovedUserID: targetUserID,
		SelfLeave:     actorID == targetUserID,
	}
	if membership.User != nil {
		result.RemovedUsername = membership.User.Username
	}
	return result, nil
}

func (s *MembershipService) ownedProject(projectID, userID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, response.NewForbidden("owner access required")
	}
	return &project, nil
}
