package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	perms            *services.PermissionService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db),
		perms:            services.NewPermissionService(db),
	}
}

// ProjectStats returns activity counts for the project overview page
// GET /api/projects/:id/dashboard
func (h *DashboardHandler) ProjectStats(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return
	}

	stats, err := h.dashboardService.ProjectStats(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
