package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

type GroupRepository struct {
	db *database.DB
}

func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts the group with its owner as the first member
func (r *GroupRepository) Create(ctx context.Context, g *models.Group) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, owner_id, current_members, max_members, created_at) VALUES ($1, $2, $3, 1, $4, $5)`,
			g.ID, g.Name, g.OwnerID, g.MaxMembers, g.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_memberships (group_id, user_id, role) VALUES ($1, $2, 'owner')`,
			g.ID, g.OwnerID,
		)
		if err != nil {
			return fmt.Errorf("failed to add group owner: %w", err)
		}
		g.CurrentMembers = 1
		return nil
	})
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	g := &models.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, current_members, max_members, created_at FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.OwnerID, &g.CurrentMembers, &g.MaxMembers, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// Join adds userID to the group and, when notificationID is set, deletes the
// invitation it came from. The member counter only moves while it is below
// max_members, so concurrent joins can never overfill a group.
func (r *GroupRepository) Join(ctx context.Context, groupID, userID, notificationID uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE groups SET current_members = current_members + 1 WHERE id = $1 AND current_members < max_members`,
			groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to reserve group seat: %w", err)
		}
		if err := expectOneRow(res, ErrGroupFull); err != nil {
			var exists bool
			if qerr := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists); qerr != nil {
				return fmt.Errorf("failed to check group: %w", qerr)
			}
			if !exists {
				return ErrNotFound
			}
			return err
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO group_memberships (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		if err := expectOneRow(res, ErrAlreadyMember); err != nil {
			return err
		}

		if notificationID != uuid.Nil {
			return deleteNotification(ctx, tx, userID, notificationID)
		}
		return nil
	})
}

// GroupIDs lists the groups userID belongs to
func (r *GroupRepository) GroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return queryIDs(ctx, r.db, `SELECT group_id FROM group_memberships WHERE user_id = $1`, userID)
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_memberships WHERE group_id = $1 AND user_id = $2)`, groupID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return ok, nil
}

func queryIDs(ctx context.Context, q queryer, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
