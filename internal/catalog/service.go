// Package catalog accepts user submissions that enter the moderation queue.
package catalog

import (
	"context"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Store interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	CreateService(ctx context.Context, s *models.Service) error
	CreateProviderApplication(ctx context.Context, a *models.ProviderApplication) error
}

// Queue is told when a kind gains a pending item
type Queue interface {
	QueueChanged(ctx context.Context, kind models.ModerationKind)
}

type Service struct {
	store Store
	queue Queue
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(store Store, queue Queue, log logrus.FieldLogger) *Service {
	return &Service{store: store, queue: queue, log: log, now: time.Now}
}

// SubmitEvent creates a pending event organized by userID
func (s *Service) SubmitEvent(ctx context.Context, userID uuid.UUID, req models.CreateEventRequest) (*models.Event, error) {
	e := &models.Event{
		ID:           uuid.New(),
		OrganizerID:  userID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		TitleAR:      req.TitleAR,
		Description:  req.Description,
		Location:     req.Location,
		StartDate:    req.StartDate,
		Price:        req.Price.Round(2),
		MaxAttendees: req.MaxAttendees,
		Status:       models.StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	s.submitted(ctx, models.KindEvent, e.ID, userID)
	return e, nil
}

// SubmitService creates a pending service offered by userID
func (s *Service) SubmitService(ctx context.Context, userID uuid.UUID, req models.CreateServiceRequest) (*models.Service, error) {
	svc := &models.Service{
		ID:          uuid.New(),
		ProviderID:  userID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Status:      models.StatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	s.submitted(ctx, models.KindService, svc.ID, userID)
	return svc, nil
}

// ApplyAsProvider files a provider application; approval promotes the user
func (s *Service) ApplyAsProvider(ctx context.Context, userID uuid.UUID, req models.CreateProviderApplicationRequest) (*models.ProviderApplication, error) {
	app := &models.ProviderApplication{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: req.BusinessName,
		Details:      req.Details,
		Status:       models.StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateProviderApplication(ctx, app); err != nil {
		return nil, err
	}
	s.submitted(ctx, models.KindProvider, app.ID, userID)
	return app, nil
}

func (s *Service) submitted(ctx context.Context, kind models.ModerationKind, id, userID uuid.UUID) {
	if s.queue != nil {
		s.queue.QueueChanged(ctx, kind)
	}
	s.log.WithFields(logrus.Fields{
		"kind":    kind,
		"id":      id,
		"user_id": userID,
	}).Info("submission queued for review")
}
