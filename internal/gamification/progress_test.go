package gamification

import (
	"testing"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func badge(requirement string, value int) models.Badge {
	return models.Badge{ID: uuid.New(), Name: requirement, RequirementType: requirement, RequirementValue: value}
}

func TestProgress_ClampsAtHundred(t *testing.T) {
	b := badge(models.RequirementBookings, 5)
	for _, v := range []int{5, 6, 50, 1 << 30} {
		assert.Equal(t, 100.0, Progress(models.UserStats{Bookings: v}, b), "value %d", v)
	}
}

func TestProgress_Partial(t *testing.T) {
	assert.Equal(t, 40.0, Progress(models.UserStats{Referrals: 2}, badge(models.RequirementReferrals, 5)))
	assert.Equal(t, 0.0, Progress(models.UserStats{}, badge(models.RequirementReferrals, 5)))
}

func TestProgress_DegenerateBadges(t *testing.T) {
	stats := models.UserStats{Points: 100}
	assert.Zero(t, Progress(stats, badge(models.RequirementPoints, 0)))
	assert.Zero(t, Progress(stats, badge(models.RequirementPoints, -3)))
	assert.Zero(t, Progress(stats, badge("likes_count", 1)))
}

func TestProgress_ShieldMember(t *testing.T) {
	b := badge(models.RequirementShieldMember, 1)
	assert.Equal(t, 100.0, Progress(models.UserStats{ShieldMember: true}, b))
	assert.Zero(t, Progress(models.UserStats{}, b))
}

func TestEvaluate_EarnedFollowsAwardedSet(t *testing.T) {
	met := badge(models.RequirementGroupsJoined, 1)
	held := badge(models.RequirementGroupsCreated, 10)

	res := Evaluate(models.UserStats{GroupsJoined: 3}, []models.Badge{met, held}, map[uuid.UUID]bool{held.ID: true})

	assert.Equal(t, 100.0, res[0].Percent)
	assert.False(t, res[0].Earned)
	assert.Equal(t, 0.0, res[1].Percent)
	assert.True(t, res[1].Earned)
	assert.Equal(t, 3.0, res[0].Current)
}
