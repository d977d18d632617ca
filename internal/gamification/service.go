package gamification

import (
	"context"
	"fmt"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	CountStat(ctx context.Context, requirementType string, userID uuid.UUID) (int, error)
	ListBadges(ctx context.Context) ([]models.Badge, error)
	AwardedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Award(ctx context.Context, userID uuid.UUID, badge models.Badge, n *models.Notification) (bool, error)
}

type LanguageLookup interface {
	GetLanguage(ctx context.Context, userID uuid.UUID) (string, error)
}

type Service struct {
	store     Store
	users     LanguageLookup
	publisher *realtime.Publisher
	log       logrus.FieldLogger
}

func NewService(store Store, users LanguageLookup, publisher *realtime.Publisher, log logrus.FieldLogger) *Service {
	return &Service{store: store, users: users, publisher: publisher, log: log}
}

// Stats loads every counter a badge can refer to, concurrently
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	var stats models.UserStats
	var shield int

	targets := map[string]*int{
		models.RequirementBookings:        &stats.Bookings,
		models.RequirementServiceBookings: &stats.ServiceBookings,
		models.RequirementGroupsJoined:    &stats.GroupsJoined,
		models.RequirementGroupsCreated:   &stats.GroupsCreated,
		models.RequirementReferrals:       &stats.Referrals,
		models.RequirementPoints:          &stats.Points,
		models.RequirementShieldMember:    &shield,
	}

	g, gctx := errgroup.WithContext(ctx)
	for requirement, dst := range targets {
		requirement, dst := requirement, dst
		g.Go(func() error {
			n, err := s.store.CountStat(gctx, requirement, userID)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.UserStats{}, err
	}

	stats.ShieldMember = shield > 0
	return stats, nil
}

// BadgeProgress returns progress toward every badge
func (s *Service) BadgeProgress(ctx context.Context, userID uuid.UUID) ([]models.BadgeProgress, error) {
	stats, badges, awarded, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Evaluate(stats, badges, awarded), nil
}

var badgeEarnedText = struct {
	title, message models.Localized
}{
	title:   models.Localized{AR: "حصلت على شارة جديدة", EN: "New badge earned"},
	message: models.Localized{AR: "مبروك! حصلت على شارة \"%s\" و%d نقطة", EN: "Congratulations! You earned the \"%s\" badge and %d points"},
}

// CheckAndAward grants every badge whose requirement is fully met and not yet
// held. Awarding is idempotent: a badge already held is skipped.
func (s *Service) CheckAndAward(ctx context.Context, userID uuid.UUID) ([]models.Badge, error) {
	stats, badges, awarded, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	lang := models.LangArabic
	if s.users != nil {
		if l, err := s.users.GetLanguage(ctx, userID); err == nil {
			lang = l
		}
	}

	var earned []models.Badge
	for _, b := range badges {
		if awarded[b.ID] || Progress(stats, b) < 100 {
			continue
		}

		name := b.Name
		if lang == models.LangArabic && b.NameAR != "" {
			name = b.NameAR
		}
		n := models.NewNotification(userID, models.NotificationBadgeEarned,
			badgeEarnedText.title.In(lang),
			fmt.Sprintf(badgeEarnedText.message.In(lang), name, b.PointsReward),
			map[string]any{"badge_id": b.ID.String()},
		)

		ok, err := s.store.Award(ctx, userID, b, n)
		if err != nil {
			return earned, err
		}
		if !ok {
			continue
		}
		earned = append(earned, b)
		s.publisher.Notification(ctx, models.ChangeInsert, n)
		s.log.WithFields(logrus.Fields{
			"user_id":  userID,
			"badge_id": b.ID,
		}).Info("badge awarded")
	}
	return earned, nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (models.UserStats, []models.Badge, map[uuid.UUID]bool, error) {
	var (
		stats   models.UserStats
		badges  []models.Badge
		awarded []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.Stats(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		badges, err = s.store.ListBadges(gctx)
		return err
	})
	g.Go(func() (err error) {
		awarded, err = s.store.AwardedIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.UserStats{}, nil, nil, err
	}

	set := make(map[uuid.UUID]bool, len(awarded))
	for _, id := range awarded {
		set[id] = true
	}
	return stats, badges, set, nil
}
