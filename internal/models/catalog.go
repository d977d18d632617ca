package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrganizerID  uuid.UUID       `json:"organizer_id" db:"organizer_id"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	Title        string          `json:"title" db:"title"`
	TitleAR      *string         `json:"title_ar,omitempty" db:"title_ar"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Location     *string         `json:"location,omitempty" db:"location"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	Price        decimal.Decimal `json:"price" db:"price"`
	MaxAttendees *int            `json:"max_attendees,omitempty" db:"max_attendees"`
	Status       string          `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type Service struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ProviderID  uuid.UUID       `json:"provider_id" db:"provider_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type ProviderApplication struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	BusinessName string    `json:"business_name" db:"business_name"`
	Details      *string   `json:"details,omitempty" db:"details"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type CreateEventRequest struct {
	Title        string          `json:"title" binding:"required,max=200"`
	TitleAR      *string         `json:"title_ar,omitempty" binding:"omitempty,max=200"`
	Description  *string         `json:"description,omitempty"`
	Location     *string         `json:"location,omitempty"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	StartDate    time.Time       `json:"start_date" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	MaxAttendees *int            `json:"max_attendees,omitempty" binding:"omitempty,min=1"`
}

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description *string         `json:"description,omitempty"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type CreateProviderApplicationRequest struct {
	BusinessName string  `json:"business_name" binding:"required,max=200"`
	Details      *string `json:"details,omitempty"`
}
