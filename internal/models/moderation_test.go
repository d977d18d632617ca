package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestModerationKind_Statuses(t *testing.T) {
	assert.Equal(t, "active", KindEvent.ApprovedStatus())
	assert.Equal(t, "cancelled", KindEvent.RejectedStatus())
	assert.Equal(t, "approved", KindService.ApprovedStatus())
	assert.Equal(t, "rejected", KindProvider.RejectedStatus())
}

func TestModerationKind_Naming(t *testing.T) {
	assert.Equal(t, "event", KindEvent.ActionSuffix())
	assert.Equal(t, "provider", KindProvider.ActionSuffix())
	assert.Equal(t, "provider_applications", KindProvider.Table())
	assert.Equal(t, "services", KindService.Table())
	assert.True(t, KindService.Valid())
	assert.False(t, ModerationKind("booking").Valid())
}

func TestUserStats_Value(t *testing.T) {
	s := UserStats{Bookings: 4, Points: 120, ShieldMember: true}

	v, ok := s.Value(RequirementBookings)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = s.Value(RequirementShieldMember)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = s.Value("unknown")
	assert.False(t, ok)
}

func TestLocalized_In(t *testing.T) {
	l := Localized{AR: "مرحبا", EN: "Hello"}
	assert.Equal(t, "Hello", l.In(LangEnglish))
	assert.Equal(t, "مرحبا", l.In(LangArabic))
	assert.Equal(t, "مرحبا", l.In(""))
	assert.Equal(t, "مرحبا", Localized{AR: "مرحبا"}.In(LangEnglish))
}

func TestNotification_DataUUID(t *testing.T) {
	id := uuid.New()
	n := NewNotification(uuid.New(), NotificationGroupInvitation, "t", "m", map[string]any{
		"group_id": id.String(),
		"count":    3,
	})

	got, ok := n.DataUUID("group_id")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = n.DataUUID("count")
	assert.False(t, ok)
	_, ok = n.DataUUID("missing")
	assert.False(t, ok)
}

func TestSuggestionReason_Priority(t *testing.T) {
	assert.Less(t, ReasonMutualGroup.Priority(), ReasonMutualConnection.Priority())
	assert.Less(t, ReasonMutualConnection.Priority(), ReasonPopular.Priority())
	assert.Less(t, ReasonPopular.Priority(), ReasonNone.Priority())
}
