// Package notifications manages a user's notification list and the actions
// some notification types carry (group invitations, friend requests).
package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoAction       = errors.New("notification has no action")
	ErrInvalidPayload = errors.New("notification payload is missing a reference")
)

// DefaultLimit is how many notifications a list or feed holds
const DefaultLimit = 50

type Store interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CreateMany(ctx context.Context, ns []*models.Notification) error
}

// GroupJoiner adds a member, respecting capacity, and removes the invitation
type GroupJoiner interface {
	Join(ctx context.Context, groupID, userID, notificationID uuid.UUID) error
}

// FriendResponder settles a friend request addressed to receiverID
type FriendResponder interface {
	RespondFriendRequest(ctx context.Context, receiverID, requestID uuid.UUID, accept bool) error
}

type EventLookup interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

type Profiles interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type Service struct {
	store     Store
	groups    GroupJoiner
	friends   FriendResponder
	events    EventLookup
	profiles  Profiles
	publisher *realtime.Publisher
	log       logrus.FieldLogger
}

func NewService(store Store, groups GroupJoiner, friends FriendResponder, events EventLookup, profiles Profiles, publisher *realtime.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		groups:    groups,
		friends:   friends,
		events:    events,
		profiles:  profiles,
		publisher: publisher,
		log:       log,
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	return s.store.List(ctx, userID, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.MarkRead(ctx, userID, id); err != nil {
		return err
	}
	n, err := s.store.Get(ctx, userID, id)
	if err != nil {
		s.log.WithError(err).Warn("failed to reload notification after read")
		return nil
	}
	s.publisher.Notification(ctx, models.ChangeUpdate, n)
	return nil
}

// MarkAllRead marks every unread notification read and returns how many changed
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	changed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		changed[id] = true
	}
	list, err := s.store.List(ctx, userID, DefaultLimit)
	if err != nil {
		s.log.WithError(err).Warn("failed to reload notifications after read all")
		return len(ids), nil
	}
	for i := range list {
		if changed[list[i].ID] {
			s.publisher.Notification(ctx, models.ChangeUpdate, &list[i])
		}
	}
	return len(ids), nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publishDelete(ctx, userID, id)
	return nil
}

// Respond runs the accept or decline action of a notification
func (s *Service) Respond(ctx context.Context, userID, id uuid.UUID, accept bool) error {
	n, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	switch n.Type {
	case models.NotificationGroupInvitation:
		return s.respondGroupInvitation(ctx, n, accept)
	case models.NotificationFriendRequest:
		return s.respondFriendRequest(ctx, n, accept)
	}
	return ErrNoAction
}

// respondGroupInvitation joins the group on accept. A full group leaves both
// the group and the invitation untouched.
func (s *Service) respondGroupInvitation(ctx context.Context, n *models.Notification, accept bool) error {
	if !accept {
		return s.Delete(ctx, n.UserID, n.ID)
	}

	groupID, ok := n.DataUUID("group_id")
	if !ok {
		return ErrInvalidPayload
	}
	if err := s.groups.Join(ctx, groupID, n.UserID, n.ID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  n.UserID,
	}).Info("group invitation accepted")
	s.publishDelete(ctx, n.UserID, n.ID)
	return nil
}

func (s *Service) respondFriendRequest(ctx context.Context, n *models.Notification, accept bool) error {
	requestID, ok := n.DataUUID("request_id")
	if !ok {
		return ErrInvalidPayload
	}
	if err := s.friends.RespondFriendRequest(ctx, n.UserID, requestID, accept); err != nil {
		return err
	}
	return s.Delete(ctx, n.UserID, n.ID)
}

var eventSharedText = struct {
	title, message models.Localized
}{
	title:   models.Localized{AR: "فعالية مشتركة", EN: "Event shared with you"},
	message: models.Localized{AR: "شارك %s معك فعالية \"%s\"", EN: "%s shared \"%s\" with you"},
}

// ShareEvent sends an event_shared notification to each recipient
func (s *Service) ShareEvent(ctx context.Context, senderID uuid.UUID, req models.ShareEventRequest) (int, error) {
	event, err := s.events.GetEvent(ctx, req.EventID)
	if err != nil {
		return 0, err
	}
	sender, err := s.profiles.GetByID(ctx, senderID)
	if err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(req.Recipients))
	seen := map[uuid.UUID]bool{senderID: true}
	for _, id := range req.Recipients {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	recipients, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	ns := make([]*models.Notification, 0, len(recipients))
	for _, r := range recipients {
		title := event.Title
		if r.Language == models.LangArabic && event.TitleAR != nil {
			title = *event.TitleAR
		}
		ns = append(ns, models.NewNotification(r.ID, models.NotificationEventShared,
			eventSharedText.title.In(r.Language),
			fmt.Sprintf(eventSharedText.message.In(r.Language), sender.DisplayName, title),
			map[string]any{"event_id": event.ID.String(), "sender_id": senderID.String()},
		))
	}
	if len(ns) == 0 {
		return 0, nil
	}
	if err := s.store.CreateMany(ctx, ns); err != nil {
		return 0, err
	}
	for _, n := range ns {
		s.publisher.Notification(ctx, models.ChangeInsert, n)
	}
	return len(ns), nil
}

func (s *Service) publishDelete(ctx context.Context, userID, id uuid.UUID) {
	s.publisher.Notification(ctx, models.ChangeDelete, &models.Notification{ID: id, UserID: userID})
}
