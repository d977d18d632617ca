package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type FollowRepository struct {
	db *database.DB
}

func NewFollowRepository(db *database.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow creates the edge and bumps both counters. Returns false when the edge already existed.
func (r *FollowRepository) Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	created := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = insertFollow(ctx, tx, followerID, followingID)
		return err
	})
	return created, err
}

func insertFollow(ctx context.Context, tx *sql.Tx, followerID, followingID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followerID, followingID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check follow insert: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := adjustFollowCounters(ctx, tx, followerID, followingID, 1); err != nil {
		return false, err
	}
	return true, nil
}

// Unfollow removes the edge and decrements both counters
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete follow: %w", err)
		}
		if err := expectOneRow(res, ErrNotFound); err != nil {
			return err
		}
		return adjustFollowCounters(ctx, tx, followerID, followingID, -1)
	})
}

// IsFollowing reports whether the follow edge exists
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func adjustFollowCounters(ctx context.Context, tx *sql.Tx, followerID, followingID uuid.UUID, delta int) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET following_count = GREATEST(following_count + $1, 0) WHERE id = $2`, delta, followerID,
	); err != nil {
		return fmt.Errorf("failed to update following count: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET followers_count = GREATEST(followers_count + $1, 0) WHERE id = $2`, delta, followingID,
	); err != nil {
		return fmt.Errorf("failed to update followers count: %w", err)
	}
	return nil
}

// FollowingIDs lists who userID follows
func (r *FollowRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return queryIDs(ctx, r.db, `SELECT following_id FROM follows WHERE follower_id = $1`, userID)
}

// FollowerIDs lists who follows userID
func (r *FollowRepository) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return queryIDs(ctx, r.db, `SELECT follower_id FROM follows WHERE following_id = $1`, userID)
}

// Candidates returns a page of profiles other than userID, most followed first
func (r *FollowRepository) Candidates(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserSuggestion, error) {
	query := `
		SELECT id, display_name, avatar_url, followers_count
		FROM profiles
		WHERE id <> $1
		ORDER BY followers_count DESC, id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	res := []models.UserSuggestion{}
	for rows.Next() {
		var s models.UserSuggestion
		if err := rows.Scan(&s.UserID, &s.DisplayName, &s.AvatarURL, &s.FollowersCount); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// InAnyGroup returns which of candidates are members of at least one of groupIDs
func (r *FollowRepository) InAnyGroup(ctx context.Context, groupIDs, candidates []uuid.UUID) ([]uuid.UUID, error) {
	if len(groupIDs) == 0 || len(candidates) == 0 {
		return nil, nil
	}
	return queryIDs(ctx, r.db,
		`SELECT DISTINCT user_id FROM group_memberships WHERE group_id = ANY($1) AND user_id = ANY($2)`,
		pq.Array(uuidStrings(groupIDs)), pq.Array(uuidStrings(candidates)),
	)
}

// FollowedByAny returns which of candidates are followed by at least one of followerIDs
func (r *FollowRepository) FollowedByAny(ctx context.Context, followerIDs, candidates []uuid.UUID) ([]uuid.UUID, error) {
	if len(followerIDs) == 0 || len(candidates) == 0 {
		return nil, nil
	}
	return queryIDs(ctx, r.db,
		`SELECT DISTINCT following_id FROM follows WHERE follower_id = ANY($1) AND following_id = ANY($2)`,
		pq.Array(uuidStrings(followerIDs)), pq.Array(uuidStrings(candidates)),
	)
}

// CreateFollowRequest records a pending request to follow a private profile
func (r *FollowRepository) CreateFollowRequest(ctx context.Context, req *models.FollowRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follow_requests (id, requester_id, target_id, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.RequesterID, req.TargetID, req.Status, req.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create follow request: %w", err)
	}
	return nil
}

// RespondFollowRequest settles a pending request addressed to targetID; accepting creates the edge
func (r *FollowRepository) RespondFollowRequest(ctx context.Context, id, targetID uuid.UUID, accept bool) (*models.FollowRequest, error) {
	status := models.RequestDeclined
	if accept {
		status = models.RequestAccepted
	}

	req := &models.FollowRequest{}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE follow_requests SET status = $1
			WHERE id = $2 AND target_id = $3 AND status = $4
			RETURNING id, requester_id, target_id, status, created_at`,
			status, id, targetID, models.RequestPending,
		).Scan(&req.ID, &req.RequesterID, &req.TargetID, &req.Status, &req.CreatedAt)
		if err == sql.ErrNoRows {
			return ErrNotPending
		}
		if err != nil {
			return fmt.Errorf("failed to respond to follow request: %w", err)
		}
		if accept {
			_, err = insertFollow(ctx, tx, req.RequesterID, req.TargetID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CreateFriendRequest records a pending friend request
func (r *FollowRepository) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO friend_requests (id, sender_id, receiver_id, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.SenderID, req.ReceiverID, req.Status, req.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// RespondFriendRequest settles a pending request addressed to receiverID.
// Accepting writes the friendship in both directions.
func (r *FollowRepository) RespondFriendRequest(ctx context.Context, id, receiverID uuid.UUID, accept bool, at time.Time) (*models.FriendRequest, error) {
	status := models.RequestDeclined
	if accept {
		status = models.RequestAccepted
	}

	req := &models.FriendRequest{}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE friend_requests SET status = $1, responded_at = $2
			WHERE id = $3 AND receiver_id = $4 AND status = $5
			RETURNING id, sender_id, receiver_id, status, created_at, responded_at`,
			status, at, id, receiverID, models.RequestPending,
		).Scan(&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.RespondedAt)
		if err == sql.ErrNoRows {
			return ErrNotPending
		}
		if err != nil {
			return fmt.Errorf("failed to respond to friend request: %w", err)
		}
		if !accept {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2), ($2, $1)
			ON CONFLICT DO NOTHING`,
			req.SenderID, req.ReceiverID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert friendship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// AreFriends reports whether a friendship row links a and b
func (r *FollowRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`, a, b,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return ok, nil
}
