package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationKind is the type of record that goes through admin approval
type ModerationKind string

const (
	KindEvent    ModerationKind = "event"
	KindService  ModerationKind = "service"
	KindProvider ModerationKind = "provider_application"
)

// Valid reports whether k is a known kind
func (k ModerationKind) Valid() bool {
	switch k {
	case KindEvent, KindService, KindProvider:
		return true
	}
	return false
}

// ActionSuffix is appended to audit tags, e.g. reject_event
func (k ModerationKind) ActionSuffix() string {
	if k == KindProvider {
		return "provider"
	}
	return string(k)
}

// GuardNamespace prefixes in-flight keys so kinds never collide
func (k ModerationKind) GuardNamespace() string {
	return k.ActionSuffix()
}

// Table backing the kind
func (k ModerationKind) Table() string {
	switch k {
	case KindEvent:
		return "events"
	case KindService:
		return "services"
	default:
		return "provider_applications"
	}
}

// Statuses per kind
const (
	StatusPending = "pending"

	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"

	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ApprovedStatus is the status an approval writes for kind
func (k ModerationKind) ApprovedStatus() string {
	if k == KindEvent {
		return EventStatusActive
	}
	return StatusApproved
}

// RejectedStatus is the status a rejection writes for kind
func (k ModerationKind) RejectedStatus() string {
	if k == KindEvent {
		return EventStatusCancelled
	}
	return StatusRejected
}

// ModerationAction is what an admin does to a pending item
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionDelete  ModerationAction = "delete"
)

// ModerationItem is an event, service or provider application seen through the queue
type ModerationItem struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Kind      ModerationKind `json:"kind"`
	Title     string         `json:"title" db:"title"`
	Status    string         `json:"status" db:"status"`
	OwnerID   *uuid.UUID     `json:"owner_id,omitempty" db:"owner_id"`
	OwnerName *string        `json:"owner_name,omitempty"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// ActivityLogEntry is an append-only audit record of an admin action
type ActivityLogEntry struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	Action     string         `json:"action" db:"action"` // approve_event, reject_service, ...
	EntityType string         `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id" db:"entity_id"`
	ActorID    uuid.UUID      `json:"actor_id" db:"actor_id"`
	Details    map[string]any `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// StatusTransition is everything one approval/rejection writes, applied atomically
type StatusTransition struct {
	Kind         ModerationKind
	ItemID       uuid.UUID
	FromStatus   string
	ToStatus     string
	OwnerID      *uuid.UUID
	Log          ActivityLogEntry
	Notification *Notification
	// PromoteRole, when set, is written to the owner's profile (provider approval)
	PromoteRole string
}

// ModerationStats are the aggregate counters on the admin dashboard
type ModerationStats struct {
	PendingEvents    int `json:"pending_events"`
	PendingServices  int `json:"pending_services"`
	PendingProviders int `json:"pending_providers"`
	PendingReports   int `json:"pending_reports"`
	TotalUsers       int `json:"total_users"`
	ActiveEvents     int `json:"active_events"`
}

type ModerationRequest struct {
	Action  ModerationAction `json:"action" binding:"required,oneof=approve reject"`
	Comment string           `json:"comment"`
}

type ActivityLogFilter struct {
	EntityType string `form:"entity_type"`
	Action     string `form:"action"`
	Limit      int    `form:"limit"`
}
