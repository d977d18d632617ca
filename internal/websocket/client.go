package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/notifications"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Time allowed for a store call made on behalf of the peer
	opTimeout = 10 * time.Second
)

// Notifier performs the read-state mutations a client may request
type Notifier interface {
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

// Client is one WebSocket connection and its live notification feed
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   uuid.UUID
	feed     *notifications.Feed
	notifier Notifier
	limiter  *rate.Limiter
	log      logrus.FieldLogger
}

// NewClient creates a client around an upgraded connection and a loaded feed
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, feed *notifications.Feed, notifier Notifier, log logrus.FieldLogger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		feed:     feed,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(20), 20),
		log:      log.WithField("user_id", userID),
	}
}

// ReadPump pumps messages from the WebSocket connection to the client's handlers
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket closed unexpectedly")
			}
			break
		}

		if !c.limiter.Allow() {
			c.sendError("rate_limited", "Too many requests")
			continue
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send queue to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one event per frame, clients parse each frame as a single JSON value
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (c *Client) handleMessage(data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid_message", "Invalid message format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	switch msg.Event {
	case models.EventNotificationRead:
		id, ok := c.notificationID(msg.Payload)
		if !ok {
			return
		}
		if err := c.notifier.MarkRead(ctx, c.userID, id); err != nil {
			c.log.WithError(err).Warn("failed to mark notification read")
			c.sendError("mark_read_failed", "Failed to mark notification as read")
		}

	case models.EventNotificationDelete:
		id, ok := c.notificationID(msg.Payload)
		if !ok {
			return
		}
		if err := c.feed.Delete(ctx, id); err != nil {
			c.log.WithError(err).Warn("failed to delete notification")
			c.sendError("delete_failed", "Failed to delete notification")
			c.sendSnapshot()
		}

	case models.EventNotificationsReadAll:
		if _, err := c.notifier.MarkAllRead(ctx, c.userID); err != nil {
			c.log.WithError(err).Warn("failed to mark all notifications read")
			c.sendError("mark_all_read_failed", "Failed to mark notifications as read")
		}

	default:
		c.sendError("unknown_event", "Unknown event type")
	}
}

func (c *Client) notificationID(raw json.RawMessage) (uuid.UUID, bool) {
	var p models.WSNotificationPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.ID == uuid.Nil {
		c.sendError("invalid_payload", "Invalid notification payload")
		return uuid.Nil, false
	}
	return p.ID, true
}

// deliver applies a change to the feed and forwards it to the peer. Called
// from the hub goroutine.
func (c *Client) deliver(change models.ChangeEvent) {
	if change.Table == models.TableNotifications && !c.feed.Apply(change) {
		return
	}
	c.emit(models.EventChange, change)
}

type snapshot struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

func (c *Client) sendSnapshot() {
	c.emit(models.EventNotificationsSnapshot, snapshot{
		Notifications: c.feed.Items(),
		UnreadCount:   c.feed.UnreadCount(),
	})
}

func (c *Client) sendError(code, message string) {
	c.emit(models.EventError, models.WSErrorPayload{Message: message, Code: code})
}

func (c *Client) emit(event string, payload any) {
	data, err := json.Marshal(models.WSMessage{Event: event, Payload: payload})
	if err != nil {
		c.log.WithError(err).Error("failed to encode websocket message")
		return
	}
	c.enqueue(data)
}

// enqueue drops the message when the peer is not keeping up
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}
