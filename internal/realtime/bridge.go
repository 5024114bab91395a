package realtime

import (
	"time"

	"github.com/codehive/server/pkg/logger"
)

// AlertCounter reports the number of unresolved alerts on a project.
type AlertCounter interface {
	UnresolvedCount(projectID uint) (int64, error)
}

// Bridge is the publish side used by REST handlers after a durable mutation
// commits. Every publish is fire-and-forget: a failed or lost notification
// never rolls back or fails the REST response.
type Bridge struct {
	hub    *Hub
	alerts AlertCounter
}

func NewBridge(hub *Hub, alerts AlertCounter) *Bridge {
	return &Bridge{hub: hub, alerts: alerts}
}

// DocUpdate carries the fields broadcast when a document's content changes.
type DocUpdate struct {
	UpdaterName string
	UpdatedAt   time.Time
	Title       string
	Content     string
}

// CollaboratorChanged announces a membership change to the room. When the
// change removed a member, removedUserID lets still-connected clients evict
// the user from the room's presence set ahead of their disconnect.
func (b *Bridge) CollaboratorChanged(projectID uint, message string, removedUserID *uint) {
	data := map[string]interface{}{"message": message}
	if removedUserID != nil {
		data["removed_user_id"] = *removedUserID
	}
	b.hub.Broadcast(RoomChannel(projectID), Event{Type: EventCollaboratorUpdate, Data: data})
}

func (b *Bridge) FileTreeChanged(projectID uint, message string) {
	b.hub.Broadcast(RoomChannel(projectID), Event{Type: EventFileTreeUpdate, Data: map[string]interface{}{
		"message": message,
	}})
}

func (b *Bridge) DocListChanged(projectID uint, message string) {
	b.hub.Broadcast(RoomChannel(projectID), Event{Type: EventDocListUpdate, Data: map[string]interface{}{
		"message": message,
	}})
}

func (b *Bridge) DocContentChanged(projectID, documentID uint, upd DocUpdate) {
	b.hub.Broadcast(RoomChannel(projectID), Event{Type: EventDocContentUpdate, Data: map[string]interface{}{
		"document_id":      documentID,
		"updater_username": upd.UpdaterName,
		"updated_at":       upd.UpdatedAt.Format(time.RFC3339),
		"title":            upd.Title,
		"content":          upd.Content,
	}})
}

// AlertChanged recomputes the project's unresolved-alert count and broadcasts
// it with the message. A failed count lookup loses this one event only.
func (b *Bridge) AlertChanged(projectID uint, message string) {
	count, err := b.alerts.UnresolvedCount(projectID)
	if err != nil {
		logger.Error().Err(err).Uint("project_id", projectID).Msg("unresolved alert count failed, skipping broadcast")
		return
	}
	b.hub.Broadcast(RoomChannel(projectID), Event{Type: EventAlertUpdate, Data: map[string]interface{}{
		"message":          message,
		"unresolved_count": count,
	}})
}

// JoinRequested shows the pending-request badge to connected room members.
func (b *Bridge) JoinRequested(projectID uint) {
	b.hub.Broadcast(RoomChannel(projectID), Event{Type: EventNewJoinRequest, Data: map[string]interface{}{}})
}

// ProjectApproved notifies a single user, on their personal channel, that
// their join request was approved. The user typically holds no connection to
// the project's room yet.
func (b *Bridge) ProjectApproved(userID uint, project interface{}) {
	b.hub.Broadcast(UserChannel(userID), Event{Type: EventProjectApproved, Data: map[string]interface{}{
		"project": project,
	}})
}
