package social

import (
	"testing"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(followers int) models.UserSuggestion {
	return models.UserSuggestion{UserID: uuid.New(), DisplayName: "u", FollowersCount: followers}
}

func TestRankSuggestions_GroupBeatsConnection(t *testing.T) {
	both := candidate(3)
	res := RankSuggestions(RankInput{
		UserID:              uuid.New(),
		SharedGroup:         map[uuid.UUID]bool{both.UserID: true},
		FollowedByFollowers: map[uuid.UUID]bool{both.UserID: true},
		Candidates:          []models.UserSuggestion{both},
		PopularThreshold:    DefaultPopularThreshold,
	})

	require.Len(t, res, 1)
	assert.Equal(t, models.ReasonMutualGroup, res[0].SuggestionReason)
}

func TestRankSuggestions_Ordering(t *testing.T) {
	popularBig := candidate(500)
	popularSmall := candidate(11)
	threshold := candidate(10)
	connection := candidate(40)
	group := candidate(2)
	groupBig := candidate(9)

	res := RankSuggestions(RankInput{
		UserID:              uuid.New(),
		SharedGroup:         map[uuid.UUID]bool{group.UserID: true, groupBig.UserID: true},
		FollowedByFollowers: map[uuid.UUID]bool{connection.UserID: true},
		Candidates:          []models.UserSuggestion{popularBig, connection, popularSmall, threshold, groupBig, group},
		PopularThreshold:    DefaultPopularThreshold,
	})

	var order []uuid.UUID
	for _, s := range res {
		order = append(order, s.UserID)
	}
	assert.Equal(t, []uuid.UUID{groupBig.UserID, group.UserID, connection.UserID, popularBig.UserID, popularSmall.UserID, threshold.UserID}, order)
	assert.Equal(t, models.ReasonNone, res[5].SuggestionReason, "exactly the threshold is not popular")
}

func TestRankSuggestions_ExcludesSelfAndFollowed(t *testing.T) {
	me := candidate(100)
	followed := candidate(50)
	other := candidate(1)

	res := RankSuggestions(RankInput{
		UserID:     me.UserID,
		Following:  map[uuid.UUID]bool{followed.UserID: true},
		Candidates: []models.UserSuggestion{me, followed, other},
	})

	require.Len(t, res, 1)
	assert.Equal(t, other.UserID, res[0].UserID)
}

func TestRankSuggestions_TruncatesAfterSorting(t *testing.T) {
	a, b, c := candidate(100), candidate(50), candidate(1)
	res := RankSuggestions(RankInput{
		UserID:           uuid.New(),
		SharedGroup:      map[uuid.UUID]bool{c.UserID: true},
		Candidates:       []models.UserSuggestion{a, b, c},
		PopularThreshold: DefaultPopularThreshold,
		Limit:            2,
	})

	require.Len(t, res, 2)
	assert.Equal(t, c.UserID, res[0].UserID)
	assert.Equal(t, a.UserID, res[1].UserID)
}

func TestRankSuggestions_StableForTies(t *testing.T) {
	first, second := candidate(20), candidate(20)
	res := RankSuggestions(RankInput{
		UserID:           uuid.New(),
		Candidates:       []models.UserSuggestion{first, second},
		PopularThreshold: DefaultPopularThreshold,
	})
	assert.Equal(t, first.UserID, res[0].UserID)
	assert.Equal(t, second.UserID, res[1].UserID)
}
