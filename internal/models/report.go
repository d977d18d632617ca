package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonHarassment     ReportReason = "harassment"
	ReasonFraud          ReportReason = "fraud"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonOther          ReportReason = "other"
)

// ReportReasons lists every accepted reason
var ReportReasons = []ReportReason{
	ReasonSpam, ReasonInappropriate, ReasonHarassment,
	ReasonFraud, ReasonMisinformation, ReasonOther,
}

const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// ReportEntityTypes lists what can be reported
var ReportEntityTypes = []string{"event", "service", "profile", "group", "message"}

type EntityReport struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	EntityType  string       `json:"entity_type" db:"entity_type"`
	EntityID    uuid.UUID    `json:"entity_id" db:"entity_id"`
	ReporterID  uuid.UUID    `json:"reporter_id" db:"reporter_id"`
	Reason      ReportReason `json:"reason" db:"reason"`
	Description *string      `json:"description,omitempty" db:"description"`
	Status      string       `json:"status" db:"status"`
	AdminNotes  *string      `json:"admin_notes,omitempty" db:"admin_notes"`
	ReviewedBy  *uuid.UUID   `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

type CreateReportRequest struct {
	EntityType  string       `json:"entity_type" binding:"required,report_entity"`
	EntityID    uuid.UUID    `json:"entity_id" binding:"required"`
	Reason      ReportReason `json:"reason" binding:"required,report_reason"`
	Description *string      `json:"description,omitempty" binding:"omitempty,max=2000"`
}

type ReviewReportRequest struct {
	Status     string `json:"status" binding:"required,oneof=reviewed resolved dismissed"`
	AdminNotes string `json:"admin_notes" binding:"max=2000"`
}
