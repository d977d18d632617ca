// Package messaging sends and lists direct messages between users.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyBody   = errors.New("message body is empty")
	ErrSelf        = errors.New("cannot message yourself")
	ErrRateLimited = errors.New("too many messages, slow down")
	ErrRepeated    = errors.New("the same message was sent too many times")
)

const previewLength = 80

type Store interface {
	Create(ctx context.Context, message *models.DirectMessage, n *models.Notification) error
	GetConversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]models.DirectMessage, error)
	MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type Profiles interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Limiter throttles a user's actions across server instances
type Limiter interface {
	AllowAction(ctx context.Context, userID uuid.UUID, action string, rate int, burst int) (bool, error)
}

type Service struct {
	store     Store
	profiles  Profiles
	limiter   Limiter
	rate      int
	repeats   *repeatGuard
	publisher *realtime.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(store Store, profiles Profiles, limiter Limiter, ratePerSec int, publisher *realtime.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		profiles:  profiles,
		limiter:   limiter,
		rate:      ratePerSec,
		repeats:   newRepeatGuard(),
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Cleanup forgets quiet senders' recent bodies every minute until ctx is done
func (s *Service) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.repeats.prune(now)
			}
		}
	}()
}

var friendMessageText = struct {
	title models.Localized
}{
	title: models.Localized{AR: "رسالة جديدة من %s", EN: "New message from %s"},
}

// Send stores a message and notifies the recipient
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req models.SendMessageRequest) (*models.DirectMessage, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if senderID == req.RecipientID {
		return nil, ErrSelf
	}
	if err := s.allow(ctx, senderID); err != nil {
		return nil, err
	}
	now := s.now()
	if s.repeats.repeated(senderID, body, now) {
		s.log.WithField("user_id", senderID).Warn("repeated message rejected")
		return nil, ErrRepeated
	}

	recipient, err := s.profiles.GetByID(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}
	sender, err := s.profiles.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.DirectMessage{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        body,
		CreatedAt:   now,
	}
	n := models.NewNotification(req.RecipientID, models.NotificationFriendMessage,
		fmt.Sprintf(friendMessageText.title.In(recipient.Language), sender.DisplayName),
		preview(body),
		map[string]any{"sender_id": senderID.String(), "message_id": msg.ID.String()},
	)

	if err := s.store.Create(ctx, msg, n); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, models.TableDirectMessages, models.ChangeInsert, msg.RecipientID, msg.ID, msg)
	s.publisher.Notification(ctx, models.ChangeInsert, n)
	return msg, nil
}

func (s *Service) Conversation(ctx context.Context, userID uuid.UUID, req models.GetMessagesRequest) ([]models.DirectMessage, error) {
	return s.store.GetConversation(ctx, userID, req.PeerID, req.Limit, req.Offset)
}

func (s *Service) MarkRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error) {
	return s.store.MarkConversationRead(ctx, userID, peerID)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}

func (s *Service) allow(ctx context.Context, userID uuid.UUID) error {
	if s.limiter == nil || s.rate <= 0 {
		return nil
	}
	ok, err := s.limiter.AllowAction(ctx, userID, "direct_message", s.rate, s.rate*2)
	if err != nil {
		// the limiter store being down must not block messaging
		s.log.WithError(err).Warn("rate limiter unavailable")
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewLength]) + "…"
}
