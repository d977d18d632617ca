package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BackupRepository struct {
	db *database.DB
}

func NewBackupRepository(db *database.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// DumpTable returns every row of table as a JSON array, never null
func (r *BackupRepository) DumpTable(ctx context.Context, table string) (json.RawMessage, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(json_agg(row_to_json(t)), '[]'::json) FROM %s t`,
		pq.QuoteIdentifier(table),
	)
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to dump %s: %w", table, err)
	}
	return json.RawMessage(raw), nil
}

// InsertSystemLog appends an entry to system_logs
func (r *BackupRepository) InsertSystemLog(ctx context.Context, level, message string, details map[string]any, userID *uuid.UUID) error {
	raw, err := marshalJSON(details)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO system_logs (id, level, message, details, user_id, created_at) VALUES ($1, $2, $3, $4, $5, NOW())`,
		uuid.New(), level, message, raw, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert system log: %w", err)
	}
	return nil
}
