package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	items     []models.Notification
	deleteErr error
	loads     int
}

func (s *stubSource) List(_ context.Context, _ uuid.UUID, _ int) ([]models.Notification, error) {
	s.loads++
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *stubSource) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

func note(userID uuid.UUID, title string) models.Notification {
	return models.Notification{ID: uuid.New(), UserID: userID, Type: models.NotificationNewFollower, Title: title, CreatedAt: time.Now()}
}

func change(t *testing.T, typ string, n models.Notification) models.ChangeEvent {
	t.Helper()
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	return models.ChangeEvent{Table: models.TableNotifications, Type: typ, UserID: n.UserID, RecordID: n.ID, Record: raw}
}

func ids(items []models.Notification) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFeed_DeleteFailureRestoresAfterRefetch(t *testing.T) {
	user := uuid.New()
	a, b := note(user, "a"), note(user, "b")
	src := &stubSource{items: []models.Notification{a, b}, deleteErr: errors.New("network down")}
	feed := NewFeed(user, src)
	require.NoError(t, feed.Load(context.Background()))

	err := feed.Delete(context.Background(), a.ID)
	assert.EqualError(t, err, "network down")
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(feed.Items()))
	assert.Equal(t, 2, src.loads)
}

func TestFeed_DeleteSuccessStaysRemoved(t *testing.T) {
	user := uuid.New()
	a, b := note(user, "a"), note(user, "b")
	src := &stubSource{items: []models.Notification{a, b}}
	feed := NewFeed(user, src)
	require.NoError(t, feed.Load(context.Background()))

	require.NoError(t, feed.Delete(context.Background(), a.ID))
	assert.Equal(t, []uuid.UUID{b.ID}, ids(feed.Items()))
	assert.Equal(t, 1, src.loads)
}

func TestFeed_ApplySplicesById(t *testing.T) {
	user := uuid.New()
	a := note(user, "a")
	feed := NewFeed(user, &stubSource{items: []models.Notification{a}})
	require.NoError(t, feed.Load(context.Background()))

	b := note(user, "b")
	assert.True(t, feed.Apply(change(t, models.ChangeInsert, b)))
	assert.False(t, feed.Apply(change(t, models.ChangeInsert, b)), "duplicate insert")
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(feed.Items()))
	assert.Equal(t, 2, feed.UnreadCount())

	a.Read = true
	assert.True(t, feed.Apply(change(t, models.ChangeUpdate, a)))
	assert.True(t, feed.Items()[1].Read)
	assert.Equal(t, 1, feed.UnreadCount())

	assert.True(t, feed.Apply(models.ChangeEvent{Table: models.TableNotifications, Type: models.ChangeDelete, UserID: user, RecordID: b.ID}))
	assert.Equal(t, []uuid.UUID{a.ID}, ids(feed.Items()))
}

func TestFeed_ApplyIgnoresForeignChanges(t *testing.T) {
	user := uuid.New()
	feed := NewFeed(user, &stubSource{})

	other := note(uuid.New(), "x")
	assert.False(t, feed.Apply(change(t, models.ChangeInsert, other)))

	mine := note(user, "y")
	c := change(t, models.ChangeInsert, mine)
	c.Table = models.TableDirectMessages
	assert.False(t, feed.Apply(c))

	assert.False(t, feed.Apply(models.ChangeEvent{Table: models.TableNotifications, Type: models.ChangeUpdate, UserID: user, RecordID: uuid.New()}))
	assert.Empty(t, feed.Items())
}
