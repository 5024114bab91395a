package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/realtime"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

// MemberHandler covers the join-request and collaborator lifecycle. Every
// successful mutation publishes to the project room after the write commits;
// approval additionally notifies the approved user's personal channel.
type MemberHandler struct {
	membershipService *services.MembershipService
	perms             *services.PermissionService
	bridge            *realtime.Bridge
}

func NewMemberHandler(db *gorm.DB, bridge *realtime.Bridge) *MemberHandler {
	return &MemberHandler{
		membershipService: services.NewMembershipService(db),
		perms:             services.NewPermissionService(db),
		bridge:            bridge,
	}
}

// Join files a pending join request by room code
// POST /api/projects/join
func (h *MemberHandler) Join(c *gin.Context) {
	var req services.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, membership, err := h.membershipService.JoinByRoomCode(middleware.GetUserID(c), req.RoomCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.JoinRequested(project.ID)

	response.Created(c, gin.H{
		"project_id":   project.ID,
		"project_name": project.Name,
		"status":       membership.Status,
	})
}

// Members lists a project's approved members
// GET /api/projects/:id/members
func (h *MemberHandler) Members(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}

	members, err := h.membershipService.Members(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// Pending lists a project's pending join requests (owner only)
// GET /api/projects/:id/requests
func (h *MemberHandler) Pending(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	pending, err := h.membershipService.PendingRequests(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pending)
}

// Approve approves a pending join request (owner only)
// POST /api/projects/:id/requests/:requestId/approve
func (h *MemberHandler) Approve(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	requestID, err := strconv.ParseUint(c.Param("requestId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	membership, project, err := h.membershipService.Approve(projectID, uint(requestID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	username := ""
	if membership.User != nil {
		username = membership.User.Username
	}
	h.bridge.CollaboratorChanged(project.ID, fmt.Sprintf("%s joined the project", username), nil)
	h.bridge.ProjectApproved(membership.UserID, project.Summary())

	response.Success(c, membership)
}

// Reject deletes a pending join request (owner only)
// DELETE /api/projects/:id/requests/:requestId
func (h *MemberHandler) Reject(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	requestID, err := strconv.ParseUint(c.Param("requestId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	if err := h.membershipService.Reject(projectID, uint(requestID), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "request rejected"})
}

// UpdateRole changes a member's role (owner only)
// PUT /api/projects/:id/members/:userId/role
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.membershipService.UpdateRole(projectID, uint(targetID), middleware.GetUserID(c), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	username := ""
	if membership.User != nil {
		username = membership.User.Username
	}
	h.bridge.CollaboratorChanged(projectID, fmt.Sprintf("%s is now %s", username, membership.Role), nil)

	response.Success(c, membership)
}

// Remove deletes a membership: the owner removes anyone, a member removes
// themself
// DELETE /api/projects/:id/members/:userId
func (h *MemberHandler) Remove(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	result, err := h.membershipService.Remove(projectID, uint(targetID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := fmt.Sprintf("%s was removed from the project", result.RemovedUsername)
	if result.SelfLeave {
		message = fmt.Sprintf("%s left the project", result.RemovedUsername)
	}
	removed := result.RemovedUserID
	h.bridge.CollaboratorChanged(result.ProjectID, message, &removed)

	response.Success(c, gin.H{"message": "member removed"})
}

// viewableProject parses :id and checks the caller can view the project.
func (h *MemberHandler) viewableProject(c *gin.Context) (uint, bool) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, false
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return 0, false
	}
	return projectID, true
}

func parseProjectID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
