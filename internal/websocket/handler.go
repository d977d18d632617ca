package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/adrena/backend/internal/auth"
	"github.com/adrena/backend/internal/notifications"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// TokenValidator resolves the token passed on the upgrade request
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// NotificationService is what a connection needs from the notifications service
type NotificationService interface {
	notifications.FeedSource
	Notifier
}

// Handler upgrades authenticated requests to live notification connections
type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	service  NotificationService
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHandler creates a new WebSocket handler. With no allowed origins every
// origin is accepted.
func NewHandler(hub *Hub, tokens TokenValidator, service NotificationService, allowedOrigins []string, log logrus.FieldLogger) *Handler {
	h := &Handler{
		hub:     hub,
		tokens:  tokens,
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		if len(allowedOrigins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return false
		}
		for _, pattern := range allowedOrigins {
			if matchOrigin(strings.TrimSpace(pattern), origin) {
				return true
			}
		}
		return false
	}
	return h
}

// HandleWebSocket handles GET /ws?token=...
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	// seed before upgrading so a store failure is still a plain HTTP error
	feed := notifications.NewFeed(claims.UserID, h.service)
	if err := feed.Load(c.Request.Context()); err != nil {
		h.log.WithError(err).WithField("user_id", claims.UserID).Error("failed to load notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, claims.UserID, feed, h.service, h.log)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	client.sendSnapshot()

	go client.WritePump()
	go client.ReadPump()
}

// OnlineUsers handles GET /api/v1/admin/online
func (h *Handler) OnlineUsers(c *gin.Context) {
	users := h.hub.OnlineUsers()
	c.JSON(http.StatusOK, gin.H{
		"online_users": users,
		"count":        len(users),
	})
}

// matchOrigin supports exact matches or wildcard patterns like *.example.com
func matchOrigin(pattern, origin string) bool {
	if pattern == origin || pattern == "*" {
		return true
	}
	if !strings.HasPrefix(pattern, "*.") {
		return false
	}
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	suffix := strings.TrimPrefix(pattern, "*")
	return strings.HasSuffix(host, suffix)
}
