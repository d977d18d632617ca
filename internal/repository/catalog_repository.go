package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

// CatalogRepository stores user submissions that enter the moderation queue
type CatalogRepository struct {
	db *database.DB
}

func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateEvent(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (id, organizer_id, category_id, title, title_ar, description, location,
			start_date, price, max_attendees, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.OrganizerID, e.CategoryID, e.Title, e.TitleAR, e.Description, e.Location,
		e.StartDate, e.Price, e.MaxAttendees, e.Status, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e := &models.Event{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, organizer_id, category_id, title, title_ar, description, location,
			start_date, price, max_attendees, status, created_at
		FROM events WHERE id = $1`, id,
	).Scan(
		&e.ID, &e.OrganizerID, &e.CategoryID, &e.Title, &e.TitleAR, &e.Description, &e.Location,
		&e.StartDate, &e.Price, &e.MaxAttendees, &e.Status, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *CatalogRepository) CreateService(ctx context.Context, s *models.Service) error {
	query := `
		INSERT INTO services (id, provider_id, category_id, name, description, price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProviderID, s.CategoryID, s.Name, s.Description, s.Price, s.Status, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *CatalogRepository) CreateProviderApplication(ctx context.Context, a *models.ProviderApplication) error {
	query := `
		INSERT INTO provider_applications (id, user_id, business_name, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.BusinessName, a.Details, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create provider application: %w", err)
	}
	return nil
}
