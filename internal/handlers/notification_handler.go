package handlers

import (
	"context"
	"net/http"

	"github.com/adrena/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Respond(ctx context.Context, userID, id uuid.UUID, accept bool) error
	ShareEvent(ctx context.Context, senderID uuid.UUID, req models.ShareEventRequest) (int, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), currentUser(c), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err, "Failed to get notifications")
		return
	}
	c.JSON(http.StatusOK, items)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err, "Failed to mark notification as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to mark notifications as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// Delete handles DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err, "Failed to delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}

// Respond handles POST /notifications/:id/respond for invitations and requests
func (h *NotificationHandler) Respond(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Respond(c.Request.Context(), currentUser(c), id, req.Accept); err != nil {
		respondError(c, err, "Failed to respond to notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response recorded"})
}

// ShareEvent handles POST /events/share
func (h *NotificationHandler) ShareEvent(c *gin.Context) {
	var req models.ShareEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.service.ShareEvent(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to share event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shared": n})
}
