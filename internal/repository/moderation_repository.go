package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

type ModerationRepository struct {
	db *database.DB
}

func NewModerationRepository(db *database.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// itemColumns maps a kind to its table, title column and owner column
func itemColumns(kind models.ModerationKind) (table, title, owner string) {
	switch kind {
	case models.KindEvent:
		return kind.Table(), "title", "organizer_id"
	case models.KindService:
		return kind.Table(), "name", "provider_id"
	default:
		return kind.Table(), "business_name", "user_id"
	}
}

func itemSelect(kind models.ModerationKind) string {
	table, title, owner := itemColumns(kind)
	return fmt.Sprintf(`
		SELECT t.id, t.%[2]s, t.status, t.%[3]s, p.display_name, t.created_at
		FROM %[1]s t
		LEFT JOIN profiles p ON p.id = t.%[3]s`, table, title, owner)
}

func scanItem(row interface{ Scan(...any) error }, kind models.ModerationKind) (*models.ModerationItem, error) {
	item := &models.ModerationItem{Kind: kind}
	var owner uuid.NullUUID
	var ownerName sql.NullString
	if err := row.Scan(&item.ID, &item.Title, &item.Status, &owner, &ownerName, &item.CreatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		id := owner.UUID
		item.OwnerID = &id
	}
	if ownerName.Valid {
		item.OwnerName = &ownerName.String
	}
	return item, nil
}

// ListPending returns the oldest pending items of a kind first
func (r *ModerationRepository) ListPending(ctx context.Context, kind models.ModerationKind, limit int) ([]models.ModerationItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := itemSelect(kind) + ` WHERE t.status = $1 ORDER BY t.created_at ASC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, models.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending %s: %w", kind, err)
	}
	defer rows.Close()

	items := []models.ModerationItem{}
	for rows.Next() {
		item, err := scanItem(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending %s: %w", kind, err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem loads one item of a kind
func (r *ModerationRepository) GetItem(ctx context.Context, kind models.ModerationKind, id uuid.UUID) (*models.ModerationItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, itemSelect(kind)+` WHERE t.id = $1`, id), kind)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return item, nil
}

// ApplyTransition writes the status change, audit entry, optional notification
// and optional role promotion in one transaction. The status update only
// matches rows still in FromStatus, so a concurrent decision yields ErrNotPending.
func (r *ModerationRepository) ApplyTransition(ctx context.Context, t *models.StatusTransition) error {
	table := t.Kind.Table()

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, table),
			t.ToStatus, t.ItemID, t.FromStatus,
		)
		if err != nil {
			return fmt.Errorf("failed to update %s status: %w", t.Kind, err)
		}
		if err := expectOneRow(res, ErrNotPending); err != nil {
			return err
		}

		if err := insertActivityLog(ctx, tx, &t.Log); err != nil {
			return err
		}

		if t.Notification != nil {
			if err := insertNotification(ctx, tx, t.Notification); err != nil {
				return err
			}
		}

		if t.PromoteRole != "" && t.OwnerID != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2 AND role = $3`,
				t.PromoteRole, *t.OwnerID, models.RoleUser,
			); err != nil {
				return fmt.Errorf("failed to promote owner: %w", err)
			}
		}
		return nil
	})
}

// DeleteItem hard-deletes an item and records the deletion
func (r *ModerationRepository) DeleteItem(ctx context.Context, kind models.ModerationKind, id uuid.UUID, entry *models.ActivityLogEntry) error {
	table := kind.Table()

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", kind, err)
		}
		if err := expectOneRow(res, ErrNotFound); err != nil {
			return err
		}
		return insertActivityLog(ctx, tx, entry)
	})
}

// Stats counts the dashboard aggregates in one round trip
func (r *ModerationRepository) Stats(ctx context.Context) (*models.ModerationStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events WHERE status = 'pending'),
			(SELECT COUNT(*) FROM services WHERE status = 'pending'),
			(SELECT COUNT(*) FROM provider_applications WHERE status = 'pending'),
			(SELECT COUNT(*) FROM entity_reports WHERE status = 'pending'),
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM events WHERE status = 'active')
	`
	s := &models.ModerationStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.PendingEvents,
		&s.PendingServices,
		&s.PendingProviders,
		&s.PendingReports,
		&s.TotalUsers,
		&s.ActiveEvents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load moderation stats: %w", err)
	}
	return s, nil
}

// ListActivity returns the newest audit entries matching the filter
func (r *ModerationRepository) ListActivity(ctx context.Context, f models.ActivityLogFilter) ([]models.ActivityLogEntry, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	query := `
		SELECT id, action, entity_type, entity_id, actor_id, details, created_at
		FROM activity_logs
		WHERE ($1 = '' OR entity_type = $1) AND ($2 = '' OR action = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, f.EntityType, f.Action, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	res := []models.ActivityLogEntry{}
	for rows.Next() {
		var e models.ActivityLogEntry
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.ActorID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		e.Details = unmarshalJSON(details)
		res = append(res, e)
	}
	return res, rows.Err()
}

func insertActivityLog(ctx context.Context, ex execer, e *models.ActivityLogEntry) error {
	details, err := marshalJSON(e.Details)
	if err != nil {
		return err
	}
	query := `INSERT INTO activity_logs (id, action, entity_type, entity_id, actor_id, details, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := ex.ExecContext(ctx, query, e.ID, e.Action, e.EntityType, e.EntityID, e.ActorID, details, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}
