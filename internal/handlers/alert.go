package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/realtime"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

// AlertHandler manages review alerts. Raising or resolving one broadcasts an
// alert_update carrying the fresh unresolved count.
type AlertHandler struct {
	alertService *services.AlertService
	perms        *services.PermissionService
	bridge       *realtime.Bridge
}

func NewAlertHandler(db *gorm.DB, bridge *realtime.Bridge) *AlertHandler {
	return &AlertHandler{
		alertService: services.NewAlertService(db),
		perms:        services.NewPermissionService(db),
		bridge:       bridge,
	}
}

// List returns a project's alerts, unresolved first
// GET /api/projects/:id/alerts
func (h *AlertHandler) List(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}

	alerts, err := h.alertService.List(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, alerts)
}

// Create raises an alert
// POST /api/projects/:id/alerts
func (h *AlertHandler) Create(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}

	var req services.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	alert, err := h.alertService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.AlertChanged(projectID, "new alert raised")

	response.Created(c, alert)
}

// Resolve marks an alert handled
// POST /api/projects/:id/alerts/:alertId/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}
	alertID, err := strconv.ParseUint(c.Param("alertId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid alert id")
		return
	}

	alert, err := h.alertService.Resolve(projectID, uint(alertID))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.AlertChanged(projectID, "alert resolved")

	response.Success(c, alert)
}

func (h *AlertHandler) viewableProject(c *gin.Context) (uint, bool) {
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
