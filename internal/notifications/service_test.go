package notifications

import (
	"context"
	"sync"
	"testing"

	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/realtime"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	items map[uuid.UUID]*models.Notification
}

func newMemStore(ns ...*models.Notification) *memStore {
	s := &memStore{items: map[uuid.UUID]*models.Notification{}}
	for _, n := range ns {
		s.items[n.ID] = n
	}
	return s
}

func (s *memStore) List(_ context.Context, userID uuid.UUID, _ int) ([]models.Notification, error) {
	var res []models.Notification
	for _, n := range s.items {
		if n.UserID == userID {
			res = append(res, *n)
		}
	}
	return res, nil
}

func (s *memStore) Get(_ context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *memStore) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	c := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.Read {
			c++
		}
	}
	return c, nil
}

func (s *memStore) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	return nil
}

func (s *memStore) MarkAllRead(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, n := range s.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (s *memStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *memStore) CreateMany(_ context.Context, ns []*models.Notification) error {
	for _, n := range ns {
		s.items[n.ID] = n
	}
	return nil
}

// groupTable mimics the conditional increment of the groups repository
type groupTable struct {
	store   *memStore
	current int
	max     int
	members map[uuid.UUID]bool
}

func (g *groupTable) Join(_ context.Context, _, userID, notificationID uuid.UUID) error {
	if g.current >= g.max {
		return repository.ErrGroupFull
	}
	if g.members[userID] {
		return repository.ErrAlreadyMember
	}
	g.current++
	g.members[userID] = true
	delete(g.store.items, notificationID)
	return nil
}

type friendCalls struct {
	receiver, request uuid.UUID
	accept            bool
}

type fakeFriends struct{ calls []friendCalls }

func (f *fakeFriends) RespondFriendRequest(_ context.Context, receiver, request uuid.UUID, accept bool) error {
	f.calls = append(f.calls, friendCalls{receiver, request, accept})
	return nil
}

type fakeBroker struct {
	mu      sync.Mutex
	changes []models.ChangeEvent
}

func (b *fakeBroker) PublishChange(_ context.Context, c models.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, c)
	return nil
}

func invitation(userID, groupID uuid.UUID) *models.Notification {
	return models.NewNotification(userID, models.NotificationGroupInvitation, "Invite", "join",
		map[string]any{"group_id": groupID.String()})
}

func newNotifService(store *memStore, groups GroupJoiner, friends FriendResponder) (*Service, *fakeBroker) {
	broker := &fakeBroker{}
	log := logger.Discard()
	return NewService(store, groups, friends, nil, nil, realtime.NewPublisher(broker, nil, log), log), broker
}

func TestRespond_GroupInvitationAtCapacity(t *testing.T) {
	user := uuid.New()
	inv := invitation(user, uuid.New())
	store := newMemStore(inv)
	groups := &groupTable{store: store, current: 5, max: 5, members: map[uuid.UUID]bool{}}
	svc, broker := newNotifService(store, groups, nil)

	err := svc.Respond(context.Background(), user, inv.ID, true)
	assert.ErrorIs(t, err, repository.ErrGroupFull)
	assert.Equal(t, 5, groups.current)
	assert.Contains(t, store.items, inv.ID)
	assert.Empty(t, broker.changes)
}

func TestRespond_GroupInvitationAccepted(t *testing.T) {
	user := uuid.New()
	inv := invitation(user, uuid.New())
	store := newMemStore(inv)
	groups := &groupTable{store: store, current: 4, max: 5, members: map[uuid.UUID]bool{}}
	svc, broker := newNotifService(store, groups, nil)

	require.NoError(t, svc.Respond(context.Background(), user, inv.ID, true))
	assert.Equal(t, 5, groups.current)
	assert.NotContains(t, store.items, inv.ID)
	require.Len(t, broker.changes, 1)
	assert.Equal(t, models.ChangeDelete, broker.changes[0].Type)
	assert.Equal(t, inv.ID, broker.changes[0].RecordID)
}

func TestRespond_GroupInvitationDeclined(t *testing.T) {
	user := uuid.New()
	inv := invitation(user, uuid.New())
	store := newMemStore(inv)
	groups := &groupTable{store: store, current: 1, max: 5, members: map[uuid.UUID]bool{}}
	svc, _ := newNotifService(store, groups, nil)

	require.NoError(t, svc.Respond(context.Background(), user, inv.ID, false))
	assert.Equal(t, 1, groups.current)
	assert.NotContains(t, store.items, inv.ID)
}

func TestRespond_GroupInvitationMissingGroup(t *testing.T) {
	user := uuid.New()
	inv := models.NewNotification(user, models.NotificationGroupInvitation, "Invite", "join", nil)
	svc, _ := newNotifService(newMemStore(inv), &groupTable{}, nil)

	assert.ErrorIs(t, svc.Respond(context.Background(), user, inv.ID, true), ErrInvalidPayload)
}

func TestRespond_FriendRequestDelegatesThenDeletes(t *testing.T) {
	user, requestID := uuid.New(), uuid.New()
	n := models.NewNotification(user, models.NotificationFriendRequest, "Friend", "hi",
		map[string]any{"request_id": requestID.String()})
	store := newMemStore(n)
	friends := &fakeFriends{}
	svc, _ := newNotifService(store, nil, friends)

	require.NoError(t, svc.Respond(context.Background(), user, n.ID, false))
	require.Len(t, friends.calls, 1)
	assert.Equal(t, friendCalls{user, requestID, false}, friends.calls[0])
	assert.NotContains(t, store.items, n.ID)
}

func TestRespond_ViewOnlyTypes(t *testing.T) {
	user := uuid.New()
	n := models.NewNotification(user, models.NotificationEventShared, "Shared", "look", nil)
	store := newMemStore(n)
	svc, _ := newNotifService(store, nil, nil)

	assert.ErrorIs(t, svc.Respond(context.Background(), user, n.ID, true), ErrNoAction)
	assert.Contains(t, store.items, n.ID)
}

func TestMarkAllRead_PublishesUpdates(t *testing.T) {
	user := uuid.New()
	a := models.NewNotification(user, models.NotificationNewFollower, "a", "a", nil)
	b := models.NewNotification(user, models.NotificationNewFollower, "b", "b", nil)
	b.Read = true
	store := newMemStore(a, b)
	svc, broker := newNotifService(store, nil, nil)

	n, err := svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, broker.changes, 1)
	assert.Equal(t, models.ChangeUpdate, broker.changes[0].Type)
	assert.Equal(t, a.ID, broker.changes[0].RecordID)

	count, err := svc.UnreadCount(context.Background(), user)
	require.NoError(t, err)
	assert.Zero(t, count)
}
