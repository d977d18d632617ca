package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

type NotificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, data, read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*models.Notification, error) {
	n := &models.Notification{}
	var data sql.NullString
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Data = unmarshalJSON(data)
	return n, nil
}

func insertNotification(ctx context.Context, ex execer, n *models.Notification) error {
	data, err := marshalJSON(n.Data)
	if err != nil {
		return err
	}
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err := ex.ExecContext(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, data, n.Read, n.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// Create inserts a single notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return insertNotification(ctx, r.db, n)
}

// CreateMany inserts notifications in one transaction
func (r *NotificationRepository) CreateMany(ctx context.Context, ns []*models.Notification) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, n := range ns {
			if err := insertNotification(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns a user's notifications newest first
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	res := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		res = append(res, *n)
	}
	return res, rows.Err()
}

// Get loads a notification owned by userID
func (r *NotificationRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 AND user_id = $2`
	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectOneRow(res, ErrNotFound)
}

// MarkAllRead returns the ids that changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false RETURNING id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan notification id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteNotification(ctx, r.db, userID, id)
}

func deleteNotification(ctx context.Context, ex execer, userID, id uuid.UUID) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return expectOneRow(res, ErrNotFound)
}
