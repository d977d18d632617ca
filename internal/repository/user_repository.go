package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const profileColumns = `id, email, display_name, avatar_url, password_hash, role, language,
	is_private, is_shield_member, followers_count, following_count, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.Role,
		&user.Language,
		&user.IsPrivate,
		&user.IsShieldMember,
		&user.FollowersCount,
		&user.FollowingCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// Create creates a new profile
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO profiles (id, email, display_name, avatar_url, password_hash, role, language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx,
		query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
		user.PasswordHash,
		user.Role,
		user.Language,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, id), user)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a profile by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`

	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, email), user)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetRole returns only the role column
func (r *UserRepository) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id = $1`, id).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// GetLanguage returns the preferred language, defaulting to Arabic
func (r *UserRepository) GetLanguage(ctx context.Context, id uuid.UUID) (string, error) {
	var lang string
	err := r.db.QueryRowContext(ctx, `SELECT language FROM profiles WHERE id = $1`, id).Scan(&lang)
	if err == sql.ErrNoRows {
		return models.LangArabic, ErrNotFound
	}
	if err != nil {
		return models.LangArabic, fmt.Errorf("failed to get language: %w", err)
	}
	return lang, nil
}

// GetByIDs retrieves multiple profiles by their IDs
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update updates editable profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE profiles
		SET display_name = $1, avatar_url = $2, language = $3, is_private = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, user.DisplayName, user.AvatarURL, user.Language, user.IsPrivate, user.ID).Scan(&user.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// CountUsers counts all profiles
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
