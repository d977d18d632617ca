// Package gamification computes badge progress and awards badges once their
// requirement is met.
package gamification

import (
	"math"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

// Progress returns how far stats are toward badge, as a percentage in [0, 100].
// Unknown requirement types and non-positive requirements yield 0.
func Progress(stats models.UserStats, badge models.Badge) float64 {
	if badge.RequirementValue <= 0 {
		return 0
	}
	value, ok := stats.Value(badge.RequirementType)
	if !ok || value <= 0 {
		return 0
	}
	ratio := math.Min(value/float64(badge.RequirementValue), 1)
	return ratio * 100
}

// Evaluate builds the progress rows for every badge. Earned only reflects the
// awarded set, never the computed percentage.
func Evaluate(stats models.UserStats, badges []models.Badge, awarded map[uuid.UUID]bool) []models.BadgeProgress {
	res := make([]models.BadgeProgress, 0, len(badges))
	for _, b := range badges {
		current, _ := stats.Value(b.RequirementType)
		res = append(res, models.BadgeProgress{
			Badge:   b,
			Current: current,
			Percent: Progress(stats, b),
			Earned:  awarded[b.ID],
		})
	}
	return res
}
