package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/config"
	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

// ExecuteHandler proxies code runs to the external execution service.
type ExecuteHandler struct {
	executionService *services.ExecutionService
	perms            *services.PermissionService
}

func NewExecuteHandler(db *gorm.DB, judgeCfg *config.JudgeConfig) *ExecuteHandler {
	return &ExecuteHandler{
		executionService: services.NewExecutionService(judgeCfg),
		perms:            services.NewPermissionService(db),
	}
}

// Run executes source code and returns the outcome
// POST /api/projects/:id/execute
func (h *ExecuteHandler) Run(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return
	}

	var req services.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.executionService.Execute(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Languages lists the supported execution languages
// GET /api/execute/languages
func (h *ExecuteHandler) Languages(c *gin.Context) {
	response.Success(c, gin.H{"languages": services.SupportedLanguages()})
}
