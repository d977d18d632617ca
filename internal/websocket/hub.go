package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/adrena/backend/internal/cache"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Presence records whether a user has at least one open connection
type Presence interface {
	SetUserOnline(ctx context.Context, userID uuid.UUID) error
	SetUserOffline(ctx context.Context, userID uuid.UUID) error
}

// Hub tracks every open connection per user and routes change events to the
// connections of the user they concern.
type Hub struct {
	// Registered clients, a user may have several tabs open
	clients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Row changes from the change feed
	changes chan models.ChangeEvent

	// Presence updates, sent to every client
	presence chan models.UserPresence

	// Closed once Run returns
	done chan struct{}

	store Presence
	log   logrus.FieldLogger

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(store Presence, log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		changes:    make(chan models.ChangeEvent, 256),
		presence:   make(chan models.UserPresence, 64),
		done:       make(chan struct{}),
		store:      store,
		log:        log,
	}
}

// Run serves registrations and deliveries until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			first := len(set) == 1
			h.mu.Unlock()

			if first {
				if err := h.store.SetUserOnline(ctx, client.userID); err != nil {
					h.log.WithError(err).WithField("user_id", client.userID).Warn("failed to set user online")
				}
			}
			h.log.WithField("user_id", client.userID).Debug("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			last := false
			if set, ok := h.clients[client.userID]; ok && set[client] {
				delete(set, client)
				close(client.send)
				if len(set) == 0 {
					delete(h.clients, client.userID)
					last = true
				}
			}
			h.mu.Unlock()

			if last {
				if err := h.store.SetUserOffline(ctx, client.userID); err != nil {
					h.log.WithError(err).WithField("user_id", client.userID).Warn("failed to set user offline")
				}
			}
			h.log.WithField("user_id", client.userID).Debug("client unregistered")

		case change := <-h.changes:
			h.mu.RLock()
			for client := range h.clients[change.UserID] {
				client.deliver(change)
			}
			h.mu.RUnlock()

		case p := <-h.presence:
			data, err := json.Marshal(models.WSMessage{Event: models.EventPresenceUpdate, Payload: p})
			if err != nil {
				continue
			}
			h.mu.RLock()
			for _, set := range h.clients {
				for client := range set {
					client.enqueue(data)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// closeAll drops every connection; the pumps exit on their own
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			if client.conn != nil {
				client.conn.Close()
			}
		}
		delete(h.clients, userID)
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Dispatch queues a change for delivery. It drops the change when the queue
// is full rather than stall the subscriber.
func (h *Hub) Dispatch(change models.ChangeEvent) {
	select {
	case h.changes <- change:
	default:
		h.log.WithFields(logrus.Fields{
			"table":   change.Table,
			"user_id": change.UserID,
		}).Warn("change queue full, dropping event")
	}
}

// BroadcastPresence queues a presence update for every client
func (h *Hub) BroadcastPresence(p models.UserPresence) {
	select {
	case h.presence <- p:
	default:
	}
}

// Subscribe feeds the hub from Redis pub/sub until ctx is done
func (h *Hub) Subscribe(ctx context.Context, redis *cache.RedisClient) {
	changeSub := redis.SubscribeToChanges(ctx)
	defer changeSub.Close()
	changeChan := changeSub.Channel()

	presenceSub := redis.SubscribeToPresence(ctx)
	defer presenceSub.Close()
	presenceChan := presenceSub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-changeChan:
			if !ok {
				return
			}
			var change models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				h.log.WithError(err).Warn("invalid change event")
				continue
			}
			h.Dispatch(change)

		case msg, ok := <-presenceChan:
			if !ok {
				return
			}
			var p models.UserPresence
			if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
				h.log.WithError(err).Warn("invalid presence update")
				continue
			}
			h.BroadcastPresence(p)
		}
	}
}

// OnlineUsers returns the users with at least one open connection
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]uuid.UUID, 0, len(h.clients))
	for userID := range h.clients {
		userIDs = append(userIDs, userID)
	}
	return userIDs
}

// IsUserOnline checks if a user is connected to this instance
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
