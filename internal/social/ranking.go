package social

import (
	"sort"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

// DefaultPopularThreshold is the follower count a candidate must exceed to be tagged popular
const DefaultPopularThreshold = 10

// RankInput is everything ranking needs, already fetched
type RankInput struct {
	UserID    uuid.UUID
	Following map[uuid.UUID]bool
	// SharedGroup holds candidates in at least one of the user's groups
	SharedGroup map[uuid.UUID]bool
	// FollowedByFollowers holds candidates followed by someone who follows the user
	FollowedByFollowers map[uuid.UUID]bool
	// Candidates ordered by followers_count descending
	Candidates       []models.UserSuggestion
	PopularThreshold int
	Limit            int
}

// RankSuggestions tags each candidate with its single highest reason and orders
// them by reason priority, then followers descending. The sort is stable, so
// candidates that tie keep their input order.
func RankSuggestions(in RankInput) []models.UserSuggestion {
	res := make([]models.UserSuggestion, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		if c.UserID == in.UserID || in.Following[c.UserID] {
			continue
		}
		c.SuggestionReason = reasonFor(c, in)
		res = append(res, c)
	}

	sort.SliceStable(res, func(i, j int) bool {
		pi, pj := res[i].SuggestionReason.Priority(), res[j].SuggestionReason.Priority()
		if pi != pj {
			return pi < pj
		}
		return res[i].FollowersCount > res[j].FollowersCount
	})

	if in.Limit > 0 && len(res) > in.Limit {
		res = res[:in.Limit]
	}
	return res
}

func reasonFor(c models.UserSuggestion, in RankInput) models.SuggestionReason {
	switch {
	case in.SharedGroup[c.UserID]:
		return models.ReasonMutualGroup
	case in.FollowedByFollowers[c.UserID]:
		return models.ReasonMutualConnection
	case c.FollowersCount > in.PopularThreshold:
		return models.ReasonPopular
	}
	return models.ReasonNone
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
