package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	perms          *services.PermissionService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
		perms:          services.NewPermissionService(db),
	}
}

// Create creates a new project owned by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	project, err := h.projectService.Create(&req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, project)
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListMine(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, projects)
}

// GetByID returns one project the caller can access
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	userID := middleware.GetUserID(c)
	if !h.perms.CanView(userID, uint(id)) {
		response.Forbidden(c, "not a member of this project")
		return
	}

	project, err := h.projectService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	// The room code is the owner's to share.
	if project.OwnerID != userID {
		project.RoomCode = ""
	}

	response.Success(c, project)
}

// Terminate deletes a project and everything under it
// DELETE /api/projects/:id
func (h *ProjectHandler) Terminate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.projectService.Terminate(uint(id), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project terminated"})
}
