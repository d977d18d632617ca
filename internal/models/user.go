package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles stored in profiles.role
const (
	RoleUser       = "user"
	RoleProvider   = "provider"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is a row of the profiles table
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Role           string    `json:"role" db:"role"`
	Language       string    `json:"language" db:"language"` // ar, en
	IsPrivate      bool      `json:"is_private" db:"is_private"`
	IsShieldMember bool      `json:"is_shield_member" db:"is_shield_member"`
	FollowersCount int       `json:"followers_count" db:"followers_count"`
	FollowingCount int       `json:"following_count" db:"following_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks basic user fields
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if u.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	if len(u.DisplayName) < 2 || len(u.DisplayName) > 100 {
		return fmt.Errorf("display name length invalid")
	}
	if u.Language != "" && u.Language != LangArabic && u.Language != LangEnglish {
		return fmt.Errorf("unsupported language")
	}
	return nil
}

// IsAdmin reports whether the user may use the back office
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

type UserPresence struct {
	UserID   uuid.UUID `json:"user_id"`
	Status   string    `json:"status"` // online, offline
	LastSeen time.Time `json:"last_seen"`
}

type CreateUserRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	DisplayName string  `json:"display_name" binding:"required"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Language    string  `json:"language" binding:"omitempty,oneof=ar en"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
