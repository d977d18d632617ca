// Package moderation implements the admin approval pipeline for events,
// services and provider applications, and the review of user reports.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrena/backend/internal/guard"
	"github.com/adrena/backend/internal/metrics"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInProgress     = errors.New("action already in progress")
	ErrReasonRequired = errors.New("a rejection reason is required")
	ErrInvalidKind    = errors.New("unknown moderation kind")
	ErrInvalidAction  = errors.New("unknown moderation action")
)

// Store is the persistence the pipeline needs
type Store interface {
	ListPending(ctx context.Context, kind models.ModerationKind, limit int) ([]models.ModerationItem, error)
	GetItem(ctx context.Context, kind models.ModerationKind, id uuid.UUID) (*models.ModerationItem, error)
	ApplyTransition(ctx context.Context, t *models.StatusTransition) error
	DeleteItem(ctx context.Context, kind models.ModerationKind, id uuid.UUID, entry *models.ActivityLogEntry) error
	Stats(ctx context.Context) (*models.ModerationStats, error)
	ListActivity(ctx context.Context, f models.ActivityLogFilter) ([]models.ActivityLogEntry, error)
}

// LanguageLookup resolves the language a user reads notifications in
type LanguageLookup interface {
	GetLanguage(ctx context.Context, userID uuid.UUID) (string, error)
}

// Cache holds the pending queues and dashboard stats between requests
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	store     Store
	reports   ReportStore
	users     LanguageLookup
	cache     Cache
	publisher *realtime.Publisher
	inflight  *guard.InFlight
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewService(
	store Store,
	reports ReportStore,
	users LanguageLookup,
	cache Cache,
	publisher *realtime.Publisher,
	inflight *guard.InFlight,
	m *metrics.Metrics,
	log logrus.FieldLogger,
	cacheTTL time.Duration,
) *Service {
	return &Service{
		store:     store,
		reports:   reports,
		users:     users,
		cache:     cache,
		publisher: publisher,
		inflight:  inflight,
		metrics:   m,
		log:       log,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

const statsCacheKey = "moderation:stats"

func pendingCacheKey(kind models.ModerationKind) string {
	return "moderation:pending:" + string(kind)
}

// Pending lists the oldest pending items of kind, served from cache when warm
func (s *Service) Pending(ctx context.Context, kind models.ModerationKind, limit int) ([]models.ModerationItem, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	if !cacheableLimit(limit) {
		return s.store.ListPending(ctx, kind, limit)
	}

	var items []models.ModerationItem
	key := fmt.Sprintf("%s:%d", pendingCacheKey(kind), limit)
	if s.cacheGet(ctx, key, &items) {
		return items, nil
	}

	items, err := s.store.ListPending(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, items)
	return items, nil
}

// Stats returns the dashboard counters, served from cache when warm
func (s *Service) Stats(ctx context.Context) (*models.ModerationStats, error) {
	var stats models.ModerationStats
	if s.cacheGet(ctx, statsCacheKey, &stats) {
		return &stats, nil
	}

	res, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, statsCacheKey, res)
	return res, nil
}

func (s *Service) ActivityLog(ctx context.Context, f models.ActivityLogFilter) ([]models.ActivityLogEntry, error) {
	return s.store.ListActivity(ctx, f)
}

// Moderate applies action to the item of kind with id on behalf of actor.
//
// A second call for the same actor and item while the first is still running
// returns ErrInProgress without touching the store. Status, audit entry and
// owner notification are committed together; cache invalidation and the
// realtime push happen afterwards and only log on failure.
func (s *Service) Moderate(ctx context.Context, actor uuid.UUID, kind models.ModerationKind, id uuid.UUID, action models.ModerationAction, comment string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	comment = strings.TrimSpace(comment)

	switch action {
	case models.ActionApprove, models.ActionDelete:
	case models.ActionReject:
		if comment == "" {
			s.metrics.ObserveModeration(string(kind), string(action), "invalid")
			return ErrReasonRequired
		}
	default:
		return ErrInvalidAction
	}

	key := guard.Key(actor, kind.GuardNamespace(), id)
	ran, err := s.inflight.Do(key, func() error {
		return s.apply(ctx, actor, kind, id, action, comment)
	})
	if !ran {
		s.metrics.ObserveModeration(string(kind), string(action), "in_progress")
		return ErrInProgress
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.ObserveModeration(string(kind), string(action), result)

	if err != nil {
		return err
	}

	s.invalidate(ctx, kind)
	return nil
}

func (s *Service) apply(ctx context.Context, actor uuid.UUID, kind models.ModerationKind, id uuid.UUID, action models.ModerationAction, comment string) error {
	item, err := s.store.GetItem(ctx, kind, id)
	if err != nil {
		return err
	}

	entry := models.ActivityLogEntry{
		ID:         uuid.New(),
		Action:     string(action) + "_" + kind.ActionSuffix(),
		EntityType: kind.ActionSuffix(),
		EntityID:   id,
		ActorID:    actor,
		Details:    map[string]any{"title": item.Title},
		CreatedAt:  s.now(),
	}
	if comment != "" {
		entry.Details["comment"] = comment
	}

	if action == models.ActionDelete {
		if err := s.store.DeleteItem(ctx, kind, id, &entry); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"kind": kind, "id": id, "actor": actor}).Info("moderation item deleted")
		return nil
	}

	if item.Status != models.StatusPending {
		return repository.ErrNotPending
	}

	tr := &models.StatusTransition{
		Kind:       kind,
		ItemID:     id,
		FromStatus: models.StatusPending,
		OwnerID:    item.OwnerID,
		Log:        entry,
	}

	text := approvalText[kind]
	if action == models.ActionApprove {
		tr.ToStatus = kind.ApprovedStatus()
		if kind == models.KindProvider {
			tr.PromoteRole = models.RoleProvider
		}
	} else {
		tr.ToStatus = kind.RejectedStatus()
		text = rejectionText[kind]
	}

	if item.OwnerID != nil {
		lang := s.language(ctx, *item.OwnerID)
		data := map[string]any{"entity_type": string(kind), "entity_id": id.String()}
		if action == models.ActionApprove {
			tr.Notification = text.build(*item.OwnerID, lang, data, item.Title)
		} else {
			tr.Notification = text.build(*item.OwnerID, lang, data, item.Title, comment)
		}
	}

	if err := s.store.ApplyTransition(ctx, tr); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"kind":   kind,
		"id":     id,
		"actor":  actor,
		"status": tr.ToStatus,
	}).Info("moderation decision recorded")

	s.publisher.Notification(ctx, models.ChangeInsert, tr.Notification)
	return nil
}

func (s *Service) language(ctx context.Context, userID uuid.UUID) string {
	if s.users == nil {
		return models.LangArabic
	}
	lang, err := s.users.GetLanguage(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID.String()).Warn("failed to load language, using default")
		return models.LangArabic
	}
	return lang
}

// QueueChanged drops the cached queue of kind after a new submission
func (s *Service) QueueChanged(ctx context.Context, kind models.ModerationKind) {
	s.invalidate(ctx, kind)
}

func (s *Service) invalidate(ctx context.Context, kind models.ModerationKind) {
	if s.cache == nil {
		return
	}
	keys := []string{statsCacheKey}
	for _, limit := range cachedLimits {
		keys = append(keys, fmt.Sprintf("%s:%d", pendingCacheKey(kind), limit))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate moderation cache")
	}
}

// cachedLimits are the page sizes whose pending queues are cached
var cachedLimits = []int{0, 20, 50, 100}

func cacheableLimit(limit int) bool {
	for _, l := range cachedLimits {
		if l == limit {
			return true
		}
	}
	return false
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return found
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, v, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
