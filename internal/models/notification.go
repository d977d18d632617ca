package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationEventApproved    = "event_approved"
	NotificationEventRejected    = "event_rejected"
	NotificationServiceApproved  = "service_approved"
	NotificationServiceRejected  = "service_rejected"
	NotificationProviderApproved = "provider_approved"
	NotificationProviderRejected = "provider_rejected"
	NotificationGroupInvitation  = "group_invitation"
	NotificationFriendRequest    = "friend_request"
	NotificationFollowRequest    = "follow_request"
	NotificationNewFollower      = "new_follower"
	NotificationEventShared      = "event_shared"
	NotificationFriendMessage    = "friend_message"
	NotificationBadgeEarned      = "badge_earned"
	NotificationReportResolved   = "report_resolved"
)

type Notification struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Type      string         `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	Data      map[string]any `json:"data,omitempty" db:"data"`
	Read      bool           `json:"read" db:"read"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// DataUUID reads a uuid field from the payload
func (n *Notification) DataUUID(key string) (uuid.UUID, bool) {
	raw, ok := n.Data[key]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// NewNotification fills id and timestamp
func NewNotification(userID uuid.UUID, kind, title, message string, data map[string]any) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

type ShareEventRequest struct {
	EventID    uuid.UUID   `json:"event_id" binding:"required"`
	Recipients []uuid.UUID `json:"recipients" binding:"required,min=1,max=50"`
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}
