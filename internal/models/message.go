package models

import (
	"time"

	"github.com/google/uuid"
)

type DirectMessage struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SenderID    uuid.UUID  `json:"sender_id" db:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id" db:"recipient_id"`
	Body        string     `json:"body" db:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	Sender      *User      `json:"sender,omitempty"`
}

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Body        string    `json:"body" binding:"required,max=10000"`
}

type GetMessagesRequest struct {
	PeerID uuid.UUID `form:"-"`
	Limit  int       `form:"limit"`
	Offset int       `form:"offset"`
}
