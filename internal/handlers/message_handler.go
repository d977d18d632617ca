package handlers

import (
	"context"
	"net/http"

	"github.com/adrena/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageService interface {
	Send(ctx context.Context, senderID uuid.UUID, req models.SendMessageRequest) (*models.DirectMessage, error)
	Conversation(ctx context.Context, userID uuid.UUID, req models.GetMessagesRequest) ([]models.DirectMessage, error)
	MarkRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type MessageHandler struct {
	service MessageService
}

func NewMessageHandler(service MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// GetMessages handles GET /conversations/:id, the conversation with a peer
func (h *MessageHandler) GetMessages(c *gin.Context) {
	peer, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.GetMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	req.PeerID = peer
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}

	messages, err := h.service.Conversation(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to get messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage sends a direct message
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.Send(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkConversationRead handles POST /conversations/:id/read
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	peer, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), currentUser(c), peer)
	if err != nil {
		respondError(c, err, "Failed to mark messages as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// UnreadCount returns the number of unread direct messages
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to count messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}
