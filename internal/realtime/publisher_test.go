package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroker struct {
	changes []models.ChangeEvent
	err     error
}

func (b *recordingBroker) PublishChange(_ context.Context, c models.ChangeEvent) error {
	if b.err != nil {
		return b.err
	}
	b.changes = append(b.changes, c)
	return nil
}

func TestPublisher_NotificationInsertCarriesRecord(t *testing.T) {
	b := &recordingBroker{}
	p := NewPublisher(b, nil, logger.Discard())

	n := models.NewNotification(uuid.New(), models.NotificationNewFollower, "t", "m", nil)
	p.Notification(context.Background(), models.ChangeInsert, n)

	require.Len(t, b.changes, 1)
	got := b.changes[0]
	assert.Equal(t, models.TableNotifications, got.Table)
	assert.Equal(t, n.UserID, got.UserID)
	assert.Equal(t, n.ID, got.RecordID)

	var decoded models.Notification
	require.NoError(t, json.Unmarshal(got.Record, &decoded))
	assert.Equal(t, n.ID, decoded.ID)
}

func TestPublisher_DeleteHasNoRecord(t *testing.T) {
	b := &recordingBroker{}
	p := NewPublisher(b, nil, logger.Discard())

	p.Notification(context.Background(), models.ChangeDelete, &models.Notification{ID: uuid.New(), UserID: uuid.New()})

	require.Len(t, b.changes, 1)
	assert.Nil(t, b.changes[0].Record)
}

func TestPublisher_FailuresAreSwallowed(t *testing.T) {
	p := NewPublisher(&recordingBroker{err: errors.New("redis down")}, nil, logger.Discard())
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), models.TableDirectMessages, models.ChangeInsert, uuid.New(), uuid.New(), nil)
	})

	var nilPub *Publisher
	assert.NotPanics(t, func() {
		nilPub.Notification(context.Background(), models.ChangeInsert, &models.Notification{})
	})
}
