package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/codehive/server/pkg/logger"
)

// PermissionSource answers room access questions for a connecting user. Misses
// deny; the lookup never surfaces an error to the connection path.
type PermissionSource interface {
	// CanEdit reports whether the user may mutate shared code state:
	// project owner, or approved member with an admin/editor role.
	CanEdit(userID, projectID uint) bool
	// CanView reports whether the user is the owner or any approved member.
	CanView(userID, projectID uint) bool
}

// ChatStore appends a routed chat message to durable storage.
type ChatStore interface {
	Append(projectID, userID uint, text string) error
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// inboundFrame is the shape of every client-originated message.
type inboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	FileID  *uint  `json:"fileId"`
}

// Client is one websocket connection bound to a project room. It owns the
// connection exclusively: the read pump dispatches inbound frames, the event
// loop translates hub events into wire payloads, the write pump drains them.
type Client struct {
	id        string
	hub       *Hub
	presence  Registry
	chats     ChatStore
	conn      *websocket.Conn
	events    <-chan Event
	send      chan []byte
	userID    uint
	username  string
	projectID uint
	room      string
	canEdit   bool // computed once at connect; role changes apply on reconnect
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection for an already-authenticated user.
// The caller has verified view access and resolved canEdit.
func NewClient(hub *Hub, presence Registry, chats ChatStore, conn *websocket.Conn, userID uint, username string, projectID uint, canEdit bool) *Client {
	return &Client{
		id:        uuid.New().String(),
		hub:       hub,
		presence:  presence,
		chats:     chats,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		userID:    userID,
		username:  username,
		projectID: projectID,
		room:      RoomChannel(projectID),
		canEdit:   canEdit,
	}
}

// Run joins the room and pumps the connection until the peer goes away. It
// blocks for the lifetime of the connection.
func (c *Client) Run() {
	ctx := context.Background()

	if err := c.presence.Join(ctx, c.room, c.userID); err != nil {
		logger.Error().Err(err).Str("room", c.room).Uint("user_id", c.userID).Msg("presence join failed")
	}
	c.events = c.hub.Join(c.room, c.id)

	c.enqueue(map[string]interface{}{
		"type":     "permission_status",
		"can_edit": c.canEdit,
	})
	c.broadcastPresence(ctx)

	logger.Info().Str("conn_id", c.id).Uint("user_id", c.userID).Uint("project_id", c.projectID).Msg("client joined room")

	go c.writePump()
	go c.eventLoop()
	c.readPump()
	c.close()
}

// close runs the disconnect sequence: presence leave, presence broadcast,
// then channel leave. Idempotent; both cleanup steps tolerate a connection
// that never fully joined.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		ctx := context.Background()

		if err := c.presence.Leave(ctx, c.room, c.userID); err != nil {
			logger.Error().Err(err).Str("room", c.room).Uint("user_id", c.userID).Msg("presence leave failed")
		}
		c.broadcastPresence(ctx)
		c.hub.Leave(c.room, c.id)
		c.conn.Close()

		logger.Info().Str("conn_id", c.id).Uint("user_id", c.userID).Uint("project_id", c.projectID).Msg("client left room")
	})
}

// readPump consumes inbound frames until the connection drops.
func (c *Client) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Str("conn_id", c.id).Msg("websocket read error")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// A malformed frame affects this connection only; the room
			// keeps running.
			logger.Debug().Str("conn_id", c.id).Msg("dropping malformed frame")
			continue
		}
		c.dispatch(&frame)
	}
}

// dispatch routes one inbound frame by its declared type.
func (c *Client) dispatch(frame *inboundFrame) {
	switch frame.Type {
	case "code_update":
		// Viewers never mutate shared code state, not even transiently.
		// The drop is silent: no error frame, no broadcast.
		if !c.canEdit {
			return
		}
		data := map[string]interface{}{"message": frame.Message}
		if frame.FileID != nil {
			data["file_id"] = *frame.FileID
		}
		c.hub.Broadcast(c.room, Event{Type: EventBroadcastCode, Data: data})

	case "chat_message":
		// Any approved member may chat. Persist first; if the write fails
		// the broadcast is skipped so storage and room never disagree.
		if err := c.chats.Append(c.projectID, c.userID, frame.Message); err != nil {
			logger.Error().Err(err).Uint("project_id", c.projectID).Uint("user_id", c.userID).Msg("chat persistence failed, skipping broadcast")
			return
		}
		c.hub.Broadcast(c.room, Event{Type: EventBroadcastChat, Data: map[string]interface{}{
			"message":  frame.Message,
			"username": c.username,
			"user_id":  c.userID,
		}})

	default:
		// Unknown types are ignored for forward compatibility.
	}
}

// eventLoop translates hub events into wire frames. It owns the send channel
// and closes it once the hub subscription ends, letting the write pump drain
// and exit.
func (c *Client) eventLoop() {
	for ev := range c.events {
		c.handleEvent(ev)
	}
	close(c.send)
}

func (c *Client) handleEvent(ev Event) {
	switch ev.Type {
	case EventBroadcastCode:
		payload := map[string]interface{}{
			"type":    "code_update",
			"message": ev.Data["message"],
		}
		if fileID, ok := ev.Data["file_id"]; ok {
			payload["fileId"] = fileID
		}
		c.enqueue(payload)

	case EventBroadcastChat:
		c.enqueue(map[string]interface{}{
			"type":     "chat_message",
			"message":  ev.Data["message"],
			"username": ev.Data["username"],
			"user_id":  ev.Data["user_id"],
		})

	case EventCollaboratorUpdate:
		// A removal may race ahead of the removed member's disconnect. Evict
		// the id from this room's presence set (idempotent) and follow up
		// with a fresh snapshot so no client keeps a stale roster.
		if raw, ok := ev.Data["removed_user_id"]; ok {
			if removed, ok := raw.(uint); ok {
				ctx := context.Background()
				if err := c.presence.Leave(ctx, c.room, removed); err != nil {
					logger.Error().Err(err).Str("room", c.room).Msg("presence evict failed")
				}
				c.enqueue(map[string]interface{}{
					"type":    "collaborator_update",
					"message": ev.Data["message"],
				})
				c.sendPresence(ctx)
				return
			}
		}
		c.enqueue(map[string]interface{}{
			"type":    "collaborator_update",
			"message": ev.Data["message"],
		})

	case EventFileTreeUpdate:
		c.enqueue(map[string]interface{}{
			"type":    "file_tree_update",
			"message": ev.Data["message"],
		})

	case EventNewJoinRequest:
		c.enqueue(map[string]interface{}{"type": "new_join_request"})

	case EventPresenceUpdate:
		c.enqueue(map[string]interface{}{
			"type":            "presence_update",
			"active_user_ids": ev.Data["active_user_ids"],
		})

	case EventDocContentUpdate:
		c.enqueue(map[string]interface{}{
			"type":             "doc_content_update",
			"documentId":       ev.Data["document_id"],
			"updater_username": ev.Data["updater_username"],
			"updated_at":       ev.Data["updated_at"],
			"title":            ev.Data["title"],
			"content":          ev.Data["content"],
		})

	case EventDocListUpdate:
		c.enqueue(map[string]interface{}{
			"type":    "doc_list_update",
			"message": ev.Data["message"],
		})

	case EventAlertUpdate:
		c.enqueue(map[string]interface{}{
			"type":             "alert_update",
			"message":          ev.Data["message"],
			"unresolved_count": ev.Data["unresolved_count"],
		})
	}
}

// broadcastPresence publishes the room's current presence snapshot to every
// room member.
func (c *Client) broadcastPresence(ctx context.Context) {
	ids, err := c.presence.Snapshot(ctx, c.room)
	if err != nil {
		logger.Error().Err(err).Str("room", c.room).Msg("presence snapshot failed")
		return
	}
	c.hub.Broadcast(c.room, Event{Type: EventPresenceUpdate, Data: map[string]interface{}{
		"active_user_ids": ids,
	}})
}

// sendPresence pushes a fresh snapshot to this connection only.
func (c *Client) sendPresence(ctx context.Context) {
	ids, err := c.presence.Snapshot(ctx, c.room)
	if err != nil {
		logger.Error().Err(err).Str("room", c.room).Msg("presence snapshot failed")
		return
	}
	c.enqueue(map[string]interface{}{
		"type":            "presence_update",
		"active_user_ids": ids,
	})
}

// enqueue marshals a wire payload onto the send buffer. Non-blocking: a
// backed-up connection loses the frame rather than stalling the room.
func (c *Client) enqueue(payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Str("conn_id", c.id).Msg("payload marshal failed")
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	pumpFrames(c.conn, c.send)
}

// pumpFrames is the shared write loop for room and notification connections.
func pumpFrames(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
