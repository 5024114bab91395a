package realtime

import "fmt"

// Event types routed through the hub. Inbound client frames are republished
// under the broadcast_* names; the REST layer publishes the rest through the
// Bridge. Client connections translate each type into its wire payload.
const (
	EventBroadcastCode      = "broadcast_code"
	EventBroadcastChat      = "broadcast_chat_message"
	EventFileTreeUpdate     = "file_tree_update"
	EventCollaboratorUpdate = "collaborator_update"
	EventNewJoinRequest     = "new_join_request"
	EventPresenceUpdate     = "presence_update"
	EventDocContentUpdate   = "doc_content_update"
	EventDocListUpdate      = "doc_list_update"
	EventAlertUpdate        = "alert_update"
	EventProjectApproved    = "project_approval_notification"
)

// Event is a typed message delivered to every subscriber of a channel.
type Event struct {
	Type string
	Data map[string]interface{}
}

// RoomChannel returns the multicast channel name for a project room.
func RoomChannel(projectID uint) string {
	return fmt.Sprintf("room:%d", projectID)
}

// UserChannel returns the per-user notification channel name. It is a
// separate namespace from room channels: cross-room notifications reach users
// who hold no room connection at all.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
