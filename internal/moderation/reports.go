package moderation

import (
	"context"
	"time"

	"github.com/adrena/backend/internal/guard"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReportStore persists user reports
type ReportStore interface {
	Create(ctx context.Context, report *models.EntityReport) error
	Get(ctx context.Context, id uuid.UUID) (*models.EntityReport, error)
	List(ctx context.Context, status string, limit int) ([]models.EntityReport, error)
	Review(ctx context.Context, id, reviewer uuid.UUID, status, notes string, at time.Time, entry *models.ActivityLogEntry, n *models.Notification) error
}

// SubmitReport files a report; one open report per reporter and entity
func (s *Service) SubmitReport(ctx context.Context, reporter uuid.UUID, req models.CreateReportRequest) (*models.EntityReport, error) {
	report := &models.EntityReport{
		ID:          uuid.New(),
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		ReporterID:  reporter,
		Reason:      req.Reason,
		Description: req.Description,
		Status:      models.ReportPending,
		CreatedAt:   s.now(),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"entity_type": report.EntityType,
		"reason":      report.Reason,
	}).Info("report submitted")

	s.invalidateStats(ctx)
	return report, nil
}

func (s *Service) Reports(ctx context.Context, status string, limit int) ([]models.EntityReport, error) {
	return s.reports.List(ctx, status, limit)
}

// ReviewReport closes a pending report and lets the reporter know
func (s *Service) ReviewReport(ctx context.Context, actor, id uuid.UUID, req models.ReviewReportRequest) error {
	var n *models.Notification

	ran, err := s.inflight.Do(guard.Key(actor, "report", id), func() error {
		report, err := s.reports.Get(ctx, id)
		if err != nil {
			return err
		}
		if report.Status != models.ReportPending {
			return repository.ErrNotPending
		}

		entry := &models.ActivityLogEntry{
			ID:         uuid.New(),
			Action:     req.Status + "_report",
			EntityType: "report",
			EntityID:   id,
			ActorID:    actor,
			Details: map[string]any{
				"entity_type": report.EntityType,
				"entity_id":   report.EntityID.String(),
				"reason":      string(report.Reason),
			},
			CreatedAt: s.now(),
		}
		if req.AdminNotes != "" {
			entry.Details["admin_notes"] = req.AdminNotes
		}

		lang := s.language(ctx, report.ReporterID)
		n = reportResolvedText.build(report.ReporterID, lang, map[string]any{"report_id": id.String()}, req.Status)

		return s.reports.Review(ctx, id, actor, req.Status, req.AdminNotes, s.now(), entry, n)
	})
	if !ran {
		s.metrics.ObserveModeration("report", req.Status, "in_progress")
		return ErrInProgress
	}
	if err != nil {
		s.metrics.ObserveModeration("report", req.Status, "error")
		return err
	}
	s.metrics.ObserveModeration("report", req.Status, "ok")

	s.publisher.Notification(ctx, models.ChangeInsert, n)
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.log.WithError(err).Warn("failed to invalidate moderation stats")
	}
}
