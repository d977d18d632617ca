package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

type MessageRepository struct {
	db *database.DB
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores a direct message together with the recipient's notification
func (r *MessageRepository) Create(ctx context.Context, message *models.DirectMessage, n *models.Notification) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO direct_messages (id, sender_id, recipient_id, body, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			message.ID,
			message.SenderID,
			message.RecipientID,
			message.Body,
			message.CreatedAt,
		).Scan(&message.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if n != nil {
			return insertNotification(ctx, tx, n)
		}
		return nil
	})
}

// GetConversation retrieves messages exchanged between two users, newest first
func (r *MessageRepository) GetConversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]models.DirectMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.body, m.read_at, m.created_at,
		       p.id, p.display_name, p.avatar_url
		FROM direct_messages m
		INNER JOIN profiles p ON m.sender_id = p.id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, userID, peerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := []models.DirectMessage{}
	for rows.Next() {
		var msg models.DirectMessage
		var sender models.User
		var readAt sql.NullTime

		err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.RecipientID,
			&msg.Body,
			&readAt,
			&msg.CreatedAt,
			&sender.ID,
			&sender.DisplayName,
			&sender.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if readAt.Valid {
			msg.ReadAt = &readAt.Time
		}

		msg.Sender = &sender
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// MarkConversationRead marks every unread message from peerID to userID as read
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE direct_messages SET read_at = NOW()
		WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL`,
		userID, peerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages as read: %w", err)
	}
	return res.RowsAffected()
}

// GetUnreadCount counts unread messages addressed to userID
func (r *MessageRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM direct_messages WHERE recipient_id = $1 AND read_at IS NULL`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}

	return count, nil
}
