package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

type BadgeRepository struct {
	db *database.DB
}

func NewBadgeRepository(db *database.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// statQueries yields a single integer for a user, keyed by requirement type
var statQueries = map[string]string{
	models.RequirementBookings:        `SELECT COUNT(*) FROM bookings WHERE user_id = $1 AND status = 'confirmed'`,
	models.RequirementServiceBookings: `SELECT COUNT(*) FROM service_bookings WHERE user_id = $1 AND status = 'confirmed'`,
	models.RequirementGroupsJoined:    `SELECT COUNT(*) FROM group_memberships WHERE user_id = $1`,
	models.RequirementGroupsCreated:   `SELECT COUNT(*) FROM groups WHERE owner_id = $1`,
	models.RequirementReferrals:       `SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`,
	models.RequirementPoints:          `SELECT COALESCE((SELECT total_points FROM user_points WHERE user_id = $1), 0)`,
	models.RequirementShieldMember:    `SELECT COALESCE((SELECT CASE WHEN is_shield_member THEN 1 ELSE 0 END FROM profiles WHERE id = $1), 0)`,
}

// CountStat loads one stat for userID
func (r *BadgeRepository) CountStat(ctx context.Context, requirementType string, userID uuid.UUID) (int, error) {
	query, ok := statQueries[requirementType]
	if !ok {
		return 0, fmt.Errorf("unknown stat %q", requirementType)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", requirementType, err)
	}
	return n, nil
}

func (r *BadgeRepository) ListBadges(ctx context.Context) ([]models.Badge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, name_ar, description, requirement_type, requirement_value, points_reward
		FROM badges
		ORDER BY requirement_type, requirement_value`)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	res := []models.Badge{}
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.NameAR, &b.Description, &b.RequirementType, &b.RequirementValue, &b.PointsReward); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

// AwardedIDs lists the badges userID already holds
func (r *BadgeRepository) AwardedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return queryIDs(ctx, r.db, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
}

// Award grants a badge, credits its points and stores the notification.
// Returns false without side effects when the badge was already held.
func (r *BadgeRepository) Award(ctx context.Context, userID uuid.UUID, badge models.Badge, n *models.Notification) (bool, error) {
	awarded := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO user_badges (user_id, badge_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, badge.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to award badge: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil
		}

		if badge.PointsReward > 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO user_points (user_id, total_points, updated_at) VALUES ($1, $2, NOW())
				ON CONFLICT (user_id) DO UPDATE
				SET total_points = user_points.total_points + EXCLUDED.total_points, updated_at = NOW()`,
				userID, badge.PointsReward,
			)
			if err != nil {
				return fmt.Errorf("failed to credit points: %w", err)
			}
		}

		if n != nil {
			if err := insertNotification(ctx, tx, n); err != nil {
				return err
			}
		}
		awarded = true
		return nil
	})
	return awarded, err
}
