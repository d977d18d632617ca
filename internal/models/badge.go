package models

import (
	"time"

	"github.com/google/uuid"
)

// Requirement types a badge can be measured against
const (
	RequirementBookings        = "bookings_count"
	RequirementServiceBookings = "service_bookings_count"
	RequirementGroupsJoined    = "groups_joined"
	RequirementGroupsCreated   = "groups_created"
	RequirementReferrals       = "referrals_count"
	RequirementPoints          = "points"
	RequirementShieldMember    = "shield_member"
)

type Badge struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	NameAR           string    `json:"name_ar" db:"name_ar"`
	Description      *string   `json:"description,omitempty" db:"description"`
	RequirementType  string    `json:"requirement_type" db:"requirement_type"`
	RequirementValue int       `json:"requirement_value" db:"requirement_value"`
	PointsReward     int       `json:"points_reward" db:"points_reward"`
}

type UserBadge struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
}

// UserStats are the counters badge requirements refer to
type UserStats struct {
	Bookings        int  `json:"bookings_count"`
	ServiceBookings int  `json:"service_bookings_count"`
	GroupsJoined    int  `json:"groups_joined"`
	GroupsCreated   int  `json:"groups_created"`
	Referrals       int  `json:"referrals_count"`
	Points          int  `json:"points"`
	ShieldMember    bool `json:"shield_member"`
}

// Value looks up the stat a requirement type names
func (s UserStats) Value(requirementType string) (float64, bool) {
	switch requirementType {
	case RequirementBookings:
		return float64(s.Bookings), true
	case RequirementServiceBookings:
		return float64(s.ServiceBookings), true
	case RequirementGroupsJoined:
		return float64(s.GroupsJoined), true
	case RequirementGroupsCreated:
		return float64(s.GroupsCreated), true
	case RequirementReferrals:
		return float64(s.Referrals), true
	case RequirementPoints:
		return float64(s.Points), true
	case RequirementShieldMember:
		if s.ShieldMember {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

type BadgeProgress struct {
	Badge   Badge   `json:"badge"`
	Current float64 `json:"current"`
	Percent float64 `json:"percent"`
	Earned  bool    `json:"earned"`
}
