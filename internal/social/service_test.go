package social

import (
	"context"
	"testing"
	"time"

	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct{ from, to uuid.UUID }

type fakeGraph struct {
	follows        map[edge]bool
	followRequests []*models.FollowRequest
	friendRequests map[uuid.UUID]*models.FriendRequest
	candidates     []models.UserSuggestion
	memberships    map[uuid.UUID][]uuid.UUID // user -> groups
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		follows:        map[edge]bool{},
		friendRequests: map[uuid.UUID]*models.FriendRequest{},
		memberships:    map[uuid.UUID][]uuid.UUID{},
	}
}

func (g *fakeGraph) Follow(_ context.Context, a, b uuid.UUID) (bool, error) {
	if g.follows[edge{a, b}] {
		return false, nil
	}
	g.follows[edge{a, b}] = true
	return true, nil
}

func (g *fakeGraph) Unfollow(_ context.Context, a, b uuid.UUID) error {
	if !g.follows[edge{a, b}] {
		return repository.ErrNotFound
	}
	delete(g.follows, edge{a, b})
	return nil
}

func (g *fakeGraph) IsFollowing(_ context.Context, a, b uuid.UUID) (bool, error) {
	return g.follows[edge{a, b}], nil
}

func (g *fakeGraph) FollowingIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var res []uuid.UUID
	for e := range g.follows {
		if e.from == id {
			res = append(res, e.to)
		}
	}
	return res, nil
}

func (g *fakeGraph) FollowerIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var res []uuid.UUID
	for e := range g.follows {
		if e.to == id {
			res = append(res, e.from)
		}
	}
	return res, nil
}

func (g *fakeGraph) Candidates(_ context.Context, id uuid.UUID, limit int) ([]models.UserSuggestion, error) {
	var res []models.UserSuggestion
	for _, c := range g.candidates {
		if c.UserID != id && len(res) < limit {
			res = append(res, c)
		}
	}
	return res, nil
}

func (g *fakeGraph) InAnyGroup(_ context.Context, groupIDs, candidates []uuid.UUID) ([]uuid.UUID, error) {
	groups := toSet(groupIDs)
	var res []uuid.UUID
	for _, c := range candidates {
		for _, gid := range g.memberships[c] {
			if groups[gid] {
				res = append(res, c)
				break
			}
		}
	}
	return res, nil
}

func (g *fakeGraph) FollowedByAny(_ context.Context, followers, candidates []uuid.UUID) ([]uuid.UUID, error) {
	var res []uuid.UUID
	for _, c := range candidates {
		for _, f := range followers {
			if g.follows[edge{f, c}] {
				res = append(res, c)
				break
			}
		}
	}
	return res, nil
}

func (g *fakeGraph) CreateFollowRequest(_ context.Context, req *models.FollowRequest) error {
	g.followRequests = append(g.followRequests, req)
	return nil
}

func (g *fakeGraph) RespondFollowRequest(_ context.Context, id, target uuid.UUID, accept bool) (*models.FollowRequest, error) {
	for _, r := range g.followRequests {
		if r.ID == id && r.TargetID == target && r.Status == models.RequestPending {
			r.Status = models.RequestDeclined
			if accept {
				r.Status = models.RequestAccepted
				g.follows[edge{r.RequesterID, r.TargetID}] = true
			}
			return r, nil
		}
	}
	return nil, repository.ErrNotPending
}

func (g *fakeGraph) CreateFriendRequest(_ context.Context, req *models.FriendRequest) error {
	g.friendRequests[req.ID] = req
	return nil
}

func (g *fakeGraph) RespondFriendRequest(_ context.Context, id, receiver uuid.UUID, accept bool, at time.Time) (*models.FriendRequest, error) {
	r, ok := g.friendRequests[id]
	if !ok || r.ReceiverID != receiver || r.Status != models.RequestPending {
		return nil, repository.ErrNotPending
	}
	r.Status = models.RequestDeclined
	if accept {
		r.Status = models.RequestAccepted
	}
	r.RespondedAt = &at
	return r, nil
}

type fakeGroups map[uuid.UUID][]uuid.UUID

func (f fakeGroups) GroupIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) { return f[id], nil }

type fakeProfiles map[uuid.UUID]*models.User

func (f fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f fakeProfiles) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	var res []models.User
	for _, id := range ids {
		if u, ok := f[id]; ok {
			res = append(res, *u)
		}
	}
	return res, nil
}

type fakeNotifier struct{ created []*models.Notification }

func (f *fakeNotifier) Create(_ context.Context, n *models.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func profile(name string, private bool) *models.User {
	return &models.User{ID: uuid.New(), DisplayName: name, Language: models.LangEnglish, IsPrivate: private}
}

func newSocial(graph *fakeGraph, groups fakeGroups, profiles fakeProfiles) (*Service, *fakeNotifier) {
	n := &fakeNotifier{}
	return NewService(graph, groups, profiles, n, nil, Options{}, logger.Discard()), n
}

func TestService_SuggestionsTagsReasons(t *testing.T) {
	me, fan := profile("me", false), profile("fan", false)
	groupmate := candidate(1)
	friendOfFan := candidate(2)
	star := candidate(300)
	alreadyFollowed := candidate(1000)

	graph := newFakeGraph()
	graph.candidates = []models.UserSuggestion{alreadyFollowed, star, friendOfFan, groupmate}
	groupID := uuid.New()
	graph.memberships[groupmate.UserID] = []uuid.UUID{groupID}
	graph.follows[edge{fan.ID, me.ID}] = true
	graph.follows[edge{fan.ID, friendOfFan.UserID}] = true
	graph.follows[edge{me.ID, alreadyFollowed.UserID}] = true

	svc, _ := newSocial(graph, fakeGroups{me.ID: {groupID}}, fakeProfiles{})

	res, err := svc.Suggestions(context.Background(), me.ID, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, groupmate.UserID, res[0].UserID)
	assert.Equal(t, models.ReasonMutualGroup, res[0].SuggestionReason)
	assert.Equal(t, friendOfFan.UserID, res[1].UserID)
	assert.Equal(t, models.ReasonMutualConnection, res[1].SuggestionReason)
	assert.Equal(t, star.UserID, res[2].UserID)
	assert.Equal(t, models.ReasonPopular, res[2].SuggestionReason)
}

func TestService_FollowPublicNotifiesOnce(t *testing.T) {
	a, b := profile("Ali", false), profile("Badr", false)
	graph := newFakeGraph()
	svc, notifier := newSocial(graph, nil, fakeProfiles{a.ID: a, b.ID: b})

	status, err := svc.Follow(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFollowing, status)

	_, err = svc.Follow(context.Background(), a.ID, b.ID)
	require.NoError(t, err)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, models.NotificationNewFollower, notifier.created[0].Type)
	assert.Equal(t, b.ID, notifier.created[0].UserID)
	assert.Contains(t, notifier.created[0].Message, "Ali")
}

func TestService_FollowPrivateCreatesRequest(t *testing.T) {
	a, b := profile("Ali", false), profile("Badr", true)
	graph := newFakeGraph()
	svc, notifier := newSocial(graph, nil, fakeProfiles{a.ID: a, b.ID: b})

	status, err := svc.Follow(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, status)
	assert.Empty(t, graph.follows)
	require.Len(t, graph.followRequests, 1)
	assert.Equal(t, models.NotificationFollowRequest, notifier.created[0].Type)

	require.NoError(t, svc.RespondFollowRequest(context.Background(), b.ID, graph.followRequests[0].ID, true))
	assert.True(t, graph.follows[edge{a.ID, b.ID}])
}

func TestService_FollowPrivateAlreadyFollowing(t *testing.T) {
	a, b := profile("Ali", false), profile("Badr", true)
	graph := newFakeGraph()
	graph.follows[edge{a.ID, b.ID}] = true
	svc, notifier := newSocial(graph, nil, fakeProfiles{a.ID: a, b.ID: b})

	status, err := svc.Follow(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFollowing, status)
	assert.Empty(t, graph.followRequests)
	assert.Empty(t, notifier.created)
}

func TestService_FollowSelf(t *testing.T) {
	svc, _ := newSocial(newFakeGraph(), nil, fakeProfiles{})
	id := uuid.New()
	_, err := svc.Follow(context.Background(), id, id)
	assert.ErrorIs(t, err, ErrSelf)
}

func TestService_FriendRequestRoundTrip(t *testing.T) {
	a, b := profile("Ali", false), profile("Badr", false)
	graph := newFakeGraph()
	svc, notifier := newSocial(graph, nil, fakeProfiles{a.ID: a, b.ID: b})

	req, err := svc.SendFriendRequest(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, notifier.created, 1)
	reqID, ok := notifier.created[0].DataUUID("request_id")
	require.True(t, ok)
	assert.Equal(t, req.ID, reqID)

	assert.ErrorIs(t, svc.RespondFriendRequest(context.Background(), a.ID, req.ID, true), repository.ErrNotPending)
	require.NoError(t, svc.RespondFriendRequest(context.Background(), b.ID, req.ID, true))
	assert.Equal(t, models.RequestAccepted, graph.friendRequests[req.ID].Status)
}
