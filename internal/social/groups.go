package social

import (
	"context"
	"errors"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotMember     = errors.New("only group members can invite")
	ErrAlreadyInside = errors.New("user is already a member")
)

type GroupStore interface {
	Create(ctx context.Context, g *models.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

var groupInvitationText = notificationText{
	kind:    models.NotificationGroupInvitation,
	title:   models.Localized{AR: "دعوة إلى مجموعة", EN: "Group invitation"},
	message: models.Localized{AR: "دعاك %s للانضمام إلى %s", EN: "%s invited you to join %s"},
}

// GroupService creates groups and sends invitations. Joining happens when the
// invitee accepts the invitation notification.
type GroupService struct {
	store     GroupStore
	profiles  Profiles
	notifier  Notifier
	publisher *realtime.Publisher
	log       logrus.FieldLogger
}

func NewGroupService(store GroupStore, profiles Profiles, notifier Notifier, publisher *realtime.Publisher, log logrus.FieldLogger) *GroupService {
	return &GroupService{store: store, profiles: profiles, notifier: notifier, publisher: publisher, log: log}
}

func (s *GroupService) Create(ctx context.Context, ownerID uuid.UUID, req models.CreateGroupRequest) (*models.Group, error) {
	g := &models.Group{
		ID:         uuid.New(),
		Name:       req.Name,
		OwnerID:    ownerID,
		MaxMembers: req.MaxMembers,
		CreatedAt:  time.Now(),
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Invite sends a group_invitation notification carrying the group id. The
// capacity check is left to the join so a full group can still be invited to.
func (s *GroupService) Invite(ctx context.Context, actorID, groupID, inviteeID uuid.UUID) (*models.Notification, error) {
	if actorID == inviteeID {
		return nil, ErrSelf
	}
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.IsMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotMember
	}
	ok, err = s.store.IsMember(ctx, groupID, inviteeID)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrAlreadyInside
	}

	invitee, err := s.profiles.GetByID(ctx, inviteeID)
	if err != nil {
		return nil, err
	}
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	n := groupInvitationText.build(inviteeID, invitee.Language, map[string]any{
		"group_id":   groupID.String(),
		"inviter_id": actorID.String(),
	}, actor.DisplayName, group.Name)
	if err := s.notifier.Create(ctx, n); err != nil {
		return nil, err
	}
	s.publisher.Notification(ctx, models.ChangeInsert, n)
	return n, nil
}
