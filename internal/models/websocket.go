package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// WebSocket event types
const (
	EventChange                = "change"
	EventNotificationsSnapshot = "notifications.snapshot"
	EventNotificationRead      = "notification.read"
	EventNotificationDelete    = "notification.delete"
	EventNotificationsReadAll  = "notifications.read_all"
	EventPresenceUpdate        = "presence.update"
	EventError                 = "error"
)

// Change feed operations
const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// Tables published on the change feed
const (
	TableNotifications  = "notifications"
	TableDirectMessages = "direct_messages"
)

// ChangeEvent is one row change delivered to the user it concerns
type ChangeEvent struct {
	Table    string          `json:"table"`
	Type     string          `json:"type"`
	UserID   uuid.UUID       `json:"user_id"`
	RecordID uuid.UUID       `json:"record_id"`
	Record   json.RawMessage `json:"record,omitempty"`
}

type WSMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type WSNotificationPayload struct {
	ID uuid.UUID `json:"id"`
}

type WSErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
