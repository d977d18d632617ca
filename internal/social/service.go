// Package social holds the follow graph, friend requests and follow suggestions.
package social

import (
	"context"
	"errors"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrSelf = errors.New("cannot target yourself")

// Follow outcomes
const (
	StatusFollowing = "following"
	StatusRequested = "requested"
)

// Graph is the follow and friendship store
type Graph interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Candidates(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserSuggestion, error)
	InAnyGroup(ctx context.Context, groupIDs, candidates []uuid.UUID) ([]uuid.UUID, error)
	FollowedByAny(ctx context.Context, followerIDs, candidates []uuid.UUID) ([]uuid.UUID, error)
	CreateFollowRequest(ctx context.Context, req *models.FollowRequest) error
	RespondFollowRequest(ctx context.Context, id, targetID uuid.UUID, accept bool) (*models.FollowRequest, error)
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	RespondFriendRequest(ctx context.Context, id, receiverID uuid.UUID, accept bool, at time.Time) (*models.FriendRequest, error)
}

type Groups interface {
	GroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type Profiles interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type Notifier interface {
	Create(ctx context.Context, n *models.Notification) error
}

type Options struct {
	PopularThreshold int
	CandidatePool    int
}

type Service struct {
	graph     Graph
	groups    Groups
	profiles  Profiles
	notifier  Notifier
	publisher *realtime.Publisher
	opts      Options
	log       logrus.FieldLogger
}

func NewService(graph Graph, groups Groups, profiles Profiles, notifier Notifier, publisher *realtime.Publisher, opts Options, log logrus.FieldLogger) *Service {
	if opts.PopularThreshold <= 0 {
		opts.PopularThreshold = DefaultPopularThreshold
	}
	if opts.CandidatePool <= 0 {
		opts.CandidatePool = 50
	}
	return &Service{
		graph:     graph,
		groups:    groups,
		profiles:  profiles,
		notifier:  notifier,
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

// Suggestions ranks profiles userID might want to follow. Nothing is cached:
// a candidate who left a shared group stops being tagged mutual_group on the
// next call.
func (s *Service) Suggestions(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserSuggestion, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var following, followers, groupIDs []uuid.UUID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		following, err = s.graph.FollowingIDs(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		followers, err = s.graph.FollowerIDs(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		groupIDs, err = s.groups.GroupIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// over-fetch so excluding followed profiles still leaves a full page
	pool := s.opts.CandidatePool
	if need := limit + len(following); pool < need {
		pool = need
	}
	candidates, err := s.graph.Candidates(ctx, userID, pool)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.UserID
	}

	var shared, connected []uuid.UUID
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		shared, err = s.graph.InAnyGroup(gctx, groupIDs, ids)
		return err
	})
	g.Go(func() (err error) {
		connected, err = s.graph.FollowedByAny(gctx, followers, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return RankSuggestions(RankInput{
		UserID:              userID,
		Following:           toSet(following),
		SharedGroup:         toSet(shared),
		FollowedByFollowers: toSet(connected),
		Candidates:          candidates,
		PopularThreshold:    s.opts.PopularThreshold,
		Limit:               limit,
	}), nil
}

// Follow follows a public profile directly and sends a request to a private one
func (s *Service) Follow(ctx context.Context, actorID, targetID uuid.UUID) (string, error) {
	if actorID == targetID {
		return "", ErrSelf
	}
	target, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return "", err
	}

	if target.IsPrivate {
		following, err := s.graph.IsFollowing(ctx, actorID, targetID)
		if err != nil {
			return "", err
		}
		if following {
			return StatusFollowing, nil
		}
		req := &models.FollowRequest{
			ID:          uuid.New(),
			RequesterID: actorID,
			TargetID:    targetID,
			Status:      models.RequestPending,
			CreatedAt:   time.Now(),
		}
		if err := s.graph.CreateFollowRequest(ctx, req); err != nil {
			return "", err
		}
		s.notify(ctx, followRequestText.build(targetID, target.Language, map[string]any{
			"request_id":   req.ID.String(),
			"requester_id": actorID.String(),
		}, actor.DisplayName))
		return StatusRequested, nil
	}

	created, err := s.graph.Follow(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	if created {
		s.notify(ctx, newFollowerText.build(targetID, target.Language, map[string]any{
			"follower_id": actorID.String(),
		}, actor.DisplayName))
	}
	return StatusFollowing, nil
}

func (s *Service) Unfollow(ctx context.Context, actorID, targetID uuid.UUID) error {
	return s.graph.Unfollow(ctx, actorID, targetID)
}

// RespondFollowRequest settles a request addressed to actorID
func (s *Service) RespondFollowRequest(ctx context.Context, actorID, requestID uuid.UUID, accept bool) error {
	_, err := s.graph.RespondFollowRequest(ctx, requestID, actorID, accept)
	return err
}

func (s *Service) Followers(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	ids, err := s.graph.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByIDs(ctx, ids)
}

func (s *Service) Following(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	ids, err := s.graph.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByIDs(ctx, ids)
}

// SendFriendRequest records the request and notifies the receiver with its id
func (s *Service) SendFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelf
	}
	receiver, err := s.profiles.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	sender, err := s.profiles.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	req := &models.FriendRequest{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}
	if err := s.graph.CreateFriendRequest(ctx, req); err != nil {
		return nil, err
	}

	s.notify(ctx, friendRequestText.build(receiverID, receiver.Language, map[string]any{
		"request_id": req.ID.String(),
		"sender_id":  senderID.String(),
	}, sender.DisplayName))
	return req, nil
}

// RespondFriendRequest accepts or declines a request addressed to receiverID
func (s *Service) RespondFriendRequest(ctx context.Context, receiverID, requestID uuid.UUID, accept bool) error {
	req, err := s.graph.RespondFriendRequest(ctx, requestID, receiverID, accept, time.Now())
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"status":     req.Status,
	}).Info("friend request answered")
	return nil
}

// notify stores and pushes a notification; failures only log since the
// social action itself already succeeded
func (s *Service) notify(ctx context.Context, n *models.Notification) {
	if err := s.notifier.Create(ctx, n); err != nil {
		s.log.WithError(err).WithField("type", n.Type).Warn("failed to create notification")
		return
	}
	s.publisher.Notification(ctx, models.ChangeInsert, n)
}
