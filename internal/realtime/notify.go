package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/codehive/server/pkg/logger"
)

// NotificationClient is a websocket connection subscribed to a user's
// personal channel. It carries cross-room notifications (a join request
// approved while the user holds no room connection) and accepts no inbound
// messages.
type NotificationClient struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	events    <-chan Event
	send      chan []byte
	userID    uint
	closeOnce sync.Once
}

func NewNotificationClient(hub *Hub, conn *websocket.Conn, userID uint) *NotificationClient {
	return &NotificationClient{
		id:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
}

// Run subscribes to the user channel and blocks until the peer disconnects.
func (c *NotificationClient) Run() {
	c.events = c.hub.Join(UserChannel(c.userID), c.id)

	logger.Info().Str("conn_id", c.id).Uint("user_id", c.userID).Msg("notification client connected")

	go pumpFrames(c.conn, c.send)
	go c.eventLoop()
	c.readPump()
	c.close()
}

func (c *NotificationClient) close() {
	c.closeOnce.Do(func() {
		c.hub.Leave(UserChannel(c.userID), c.id)
		c.conn.Close()
		logger.Info().Str("conn_id", c.id).Uint("user_id", c.userID).Msg("notification client disconnected")
	})
}

// readPump discards inbound frames; its only job is detecting disconnect and
// answering pings.
func (c *NotificationClient) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *NotificationClient) eventLoop() {
	for ev := range c.events {
		if ev.Type != EventProjectApproved {
			continue
		}
		payload := map[string]interface{}{
			"type":    "project_approved",
			"project": ev.Data["project"],
		}
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error().Err(err).Str("conn_id", c.id).Msg("payload marshal failed")
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
	close(c.send)
}
