package models

import (
	"time"

	"github.com/google/uuid"
)

type Follow struct {
	FollowerID  uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowingID uuid.UUID `json:"following_id" db:"following_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// FollowRequest is created instead of a follow edge when the target profile is private
type FollowRequest struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RequesterID uuid.UUID `json:"requester_id" db:"requester_id"`
	TargetID    uuid.UUID `json:"target_id" db:"target_id"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type FriendRequest struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SenderID    uuid.UUID  `json:"sender_id" db:"sender_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id" db:"receiver_id"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`
}

type Group struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	OwnerID        uuid.UUID `json:"owner_id" db:"owner_id"`
	CurrentMembers int       `json:"current_members" db:"current_members"`
	MaxMembers     int       `json:"max_members" db:"max_members"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SuggestionReason explains why a profile is suggested
type SuggestionReason string

const (
	ReasonMutualGroup      SuggestionReason = "mutual_group"
	ReasonMutualConnection SuggestionReason = "mutual_connection"
	ReasonPopular          SuggestionReason = "popular"
	ReasonNone             SuggestionReason = ""
)

// Priority orders reasons: lower sorts first
func (r SuggestionReason) Priority() int {
	switch r {
	case ReasonMutualGroup:
		return 0
	case ReasonMutualConnection:
		return 1
	case ReasonPopular:
		return 2
	default:
		return 3
	}
}

type UserSuggestion struct {
	UserID           uuid.UUID        `json:"user_id"`
	DisplayName      string           `json:"display_name"`
	AvatarURL        *string          `json:"avatar_url,omitempty"`
	FollowersCount   int              `json:"followers_count"`
	SuggestionReason SuggestionReason `json:"suggestion_reason,omitempty"`
}

type InviteToGroupRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

type CreateGroupRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	MaxMembers int    `json:"max_members" binding:"required,min=2,max=500"`
}
