package social

import (
	"context"
	"testing"

	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroupStore struct {
	groups  map[uuid.UUID]*models.Group
	members map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:  map[uuid.UUID]*models.Group{},
		members: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeGroupStore) Create(_ context.Context, g *models.Group) error {
	g.CurrentMembers = 1
	f.groups[g.ID] = g
	f.members[g.ID] = map[uuid.UUID]bool{g.OwnerID: true}
	return nil
}

func (f *fakeGroupStore) GetByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeGroupStore) IsMember(_ context.Context, groupID, userID uuid.UUID) (bool, error) {
	return f.members[groupID][userID], nil
}

func TestGroupService_Invite(t *testing.T) {
	owner, friend := profile("owner", false), profile("friend", false)
	friend.Language = models.LangArabic
	store := newFakeGroupStore()
	n := &fakeNotifier{}
	svc := NewGroupService(store, fakeProfiles{owner.ID: owner, friend.ID: friend}, n, nil, logger.Discard())

	g, err := svc.Create(context.Background(), owner.ID, models.CreateGroupRequest{Name: "Divers", MaxMembers: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentMembers)

	inv, err := svc.Invite(context.Background(), owner.ID, g.ID, friend.ID)
	require.NoError(t, err)
	require.Len(t, n.created, 1)
	assert.Equal(t, models.NotificationGroupInvitation, inv.Type)
	assert.Equal(t, friend.ID, inv.UserID)
	assert.Contains(t, inv.Message, "Divers")

	groupID, ok := inv.DataUUID("group_id")
	require.True(t, ok)
	assert.Equal(t, g.ID, groupID)
}

func TestGroupService_InviteRejected(t *testing.T) {
	owner, outsider, member := profile("owner", false), profile("outsider", false), profile("member", false)
	store := newFakeGroupStore()
	n := &fakeNotifier{}
	profiles := fakeProfiles{owner.ID: owner, outsider.ID: outsider, member.ID: member}
	svc := NewGroupService(store, profiles, n, nil, logger.Discard())

	g, err := svc.Create(context.Background(), owner.ID, models.CreateGroupRequest{Name: "g", MaxMembers: 2})
	require.NoError(t, err)
	store.members[g.ID][member.ID] = true

	_, err = svc.Invite(context.Background(), outsider.ID, g.ID, member.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.Invite(context.Background(), owner.ID, g.ID, member.ID)
	assert.ErrorIs(t, err, ErrAlreadyInside)

	_, err = svc.Invite(context.Background(), owner.ID, g.ID, owner.ID)
	assert.ErrorIs(t, err, ErrSelf)

	_, err = svc.Invite(context.Background(), owner.ID, uuid.New(), outsider.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Empty(t, n.created)
}
