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

type ReportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, entity_type, entity_id, reporter_id, reason, description, status,
	admin_notes, reviewed_by, reviewed_at, created_at`

func scanReport(row interface{ Scan(...any) error }) (*models.EntityReport, error) {
	r := &models.EntityReport{}
	var reviewedBy uuid.NullUUID
	var reviewedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.EntityType, &r.EntityID, &r.ReporterID, &r.Reason, &r.Description,
		&r.Status, &r.AdminNotes, &reviewedBy, &reviewedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		id := reviewedBy.UUID
		r.ReviewedBy = &id
	}
	if reviewedAt.Valid {
		r.ReviewedAt = &reviewedAt.Time
	}
	return r, nil
}

// Create files a report; a second pending report for the same entity by the same user is ErrAlreadyExists
func (r *ReportRepository) Create(ctx context.Context, report *models.EntityReport) error {
	query := `
		INSERT INTO entity_reports (id, entity_type, entity_id, reporter_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.EntityType, report.EntityID, report.ReporterID,
		report.Reason, report.Description, report.Status, report.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (*models.EntityReport, error) {
	report, err := scanReport(r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM entity_reports WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// List returns reports with the given status, all statuses when empty
func (r *ReportRepository) List(ctx context.Context, status string, limit int) ([]models.EntityReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + reportColumns + ` FROM entity_reports
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	res := []models.EntityReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		res = append(res, *report)
	}
	return res, rows.Err()
}

// Review closes a pending report, records the audit entry and, when n is set,
// notifies the reporter, all in one transaction
func (r *ReportRepository) Review(ctx context.Context, id, reviewer uuid.UUID, status, notes string, at time.Time, entry *models.ActivityLogEntry, n *models.Notification) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE entity_reports
			SET status = $1, admin_notes = NULLIF($2, ''), reviewed_by = $3, reviewed_at = $4
			WHERE id = $5 AND status = $6`,
			status, notes, reviewer, at, id, models.ReportPending,
		)
		if err != nil {
			return fmt.Errorf("failed to review report: %w", err)
		}
		if err := expectOneRow(res, ErrNotPending); err != nil {
			return err
		}
		if err := insertActivityLog(ctx, tx, entry); err != nil {
			return err
		}
		if n != nil {
			return insertNotification(ctx, tx, n)
		}
		return nil
	})
}
