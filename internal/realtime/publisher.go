// Package realtime pushes row changes onto the shared change feed that every
// server instance fans out to connected websocket clients.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/adrena/backend/internal/metrics"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Broker carries change events between instances (Redis pub/sub in production)
type Broker interface {
	PublishChange(ctx context.Context, change models.ChangeEvent) error
}

// Publisher is best-effort: failures are logged, never returned. A nil
// *Publisher drops everything.
type Publisher struct {
	broker  Broker
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewPublisher(broker Broker, m *metrics.Metrics, log logrus.FieldLogger) *Publisher {
	return &Publisher{broker: broker, metrics: m, log: log}
}

// Publish sends one change addressed to userID
func (p *Publisher) Publish(ctx context.Context, table, changeType string, userID, recordID uuid.UUID, record any) {
	if p == nil || p.broker == nil {
		return
	}

	change := models.ChangeEvent{
		Table:    table,
		Type:     changeType,
		UserID:   userID,
		RecordID: recordID,
	}
	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			p.log.WithError(err).Warn("failed to encode change record")
			return
		}
		change.Record = raw
	}

	if err := p.broker.PublishChange(ctx, change); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"table":   table,
			"type":    changeType,
			"user_id": userID.String(),
		}).Warn("failed to publish change")
		return
	}
	p.metrics.ObserveRealtime(table, changeType)
}

// Notification publishes a change on the notifications table to its owner
func (p *Publisher) Notification(ctx context.Context, changeType string, n *models.Notification) {
	if n == nil {
		return
	}
	var record any
	if changeType != models.ChangeDelete {
		record = n
	}
	p.Publish(ctx, models.TableNotifications, changeType, n.UserID, n.ID, record)
}
