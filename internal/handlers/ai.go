package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

// AIHandler exposes the project code assistant: queue an index rebuild, ask a
// question grounded in the indexed files.
type AIHandler struct {
	ragService *services.RAGService
	perms      *services.PermissionService
	queue      services.TaskQueue
}

func NewAIHandler(db *gorm.DB, ragService *services.RAGService, queue services.TaskQueue) *AIHandler {
	return &AIHandler{
		ragService: ragService,
		perms:      services.NewPermissionService(db),
		queue:      queue,
	}
}

// Index queues a rebuild of the project's AI context
// POST /api/projects/:id/ai/index
func (h *AIHandler) Index(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return
	}

	if err := h.queue.Enqueue(&services.IndexTask{ProjectID: projectID}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "index rebuild queued"})
}

// Chat answers a question about the project's code
// POST /api/projects/:id/ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return
	}

	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	answer, err := h.ragService.Chat(c.Request.Context(), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, answer)
}
