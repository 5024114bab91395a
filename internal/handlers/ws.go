package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/realtime"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/internal/utils"
	"github.com/codehive/server/pkg/logger"
	"github.com/codehive/server/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client connects cross-origin from the SPA host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades websocket connections for project rooms and personal
// notification channels. Authentication and the membership gate run before
// the upgrade so rejects are plain HTTP responses.
type WSHandler struct {
	hub      *realtime.Hub
	presence realtime.Registry
	perms    *services.PermissionService
	chats    *services.ChatService
}

func NewWSHandler(db *gorm.DB, hub *realtime.Hub, presence realtime.Registry) *WSHandler {
	return &WSHandler{
		hub:      hub,
		presence: presence,
		perms:    services.NewPermissionService(db),
		chats:    services.NewChatService(db),
	}
}

// ServeProject connects a member to a project room
// GET /ws/projects/:id?token=<jwt>
func (h *WSHandler) ServeProject(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if !h.perms.CanView(claims.UserID, projectID) {
		response.Forbidden(c, "not a member of this project")
		return
	}
	canEdit := h.perms.CanEdit(claims.UserID, projectID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", claims.UserID).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(h.hub, h.presence, h.chats, conn,
		claims.UserID, claims.Username, projectID, canEdit)
	client.Run()
}

// ServeNotifications connects a user to their personal notification channel
// GET /ws/notifications?token=<jwt>
func (h *WSHandler) ServeNotifications(c *gin.Context) {
	claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", claims.UserID).Msg("websocket upgrade failed")
		return
	}

	realtime.NewNotificationClient(h.hub, conn, claims.UserID).Run()
}

// authenticate reads the JWT from the token query param. Browsers cannot set
// headers on websocket dials.
func (h *WSHandler) authenticate(c *gin.Context) (*utils.Claims, bool) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "token required")
		return nil, false
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return nil, false
	}
	return claims, true
}
