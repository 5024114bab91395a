package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

// ChatHandler serves persisted room chat. Sending goes over the websocket;
// REST only reads history back.
type ChatHandler struct {
	chatService *services.ChatService
	perms       *services.PermissionService
}

func NewChatHandler(db *gorm.DB) *ChatHandler {
	return &ChatHandler{
		chatService: services.NewChatService(db),
		perms:       services.NewPermissionService(db),
	}
}

// History returns a project's chat messages in send order
// GET /api/projects/:id/chat
func (h *ChatHandler) History(c *gin.Context) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return
	}

	messages, err := h.chatService.History(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, messages)
}
