package handlers

import (
	"context"
	"net/http"

	"github.com/adrena/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SocialService interface {
	Suggestions(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserSuggestion, error)
	Follow(ctx context.Context, actorID, targetID uuid.UUID) (string, error)
	Unfollow(ctx context.Context, actorID, targetID uuid.UUID) error
	RespondFollowRequest(ctx context.Context, actorID, requestID uuid.UUID, accept bool) error
	Followers(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	Following(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	SendFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error)
	RespondFriendRequest(ctx context.Context, receiverID, requestID uuid.UUID, accept bool) error
}

type GroupService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req models.CreateGroupRequest) (*models.Group, error)
	Invite(ctx context.Context, actorID, groupID, inviteeID uuid.UUID) (*models.Notification, error)
}

type SocialHandler struct {
	social SocialService
	groups GroupService
}

func NewSocialHandler(social SocialService, groups GroupService) *SocialHandler {
	return &SocialHandler{social: social, groups: groups}
}

// Suggestions handles GET /social/suggestions
func (h *SocialHandler) Suggestions(c *gin.Context) {
	res, err := h.social.Suggestions(c.Request.Context(), currentUser(c), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err, "Failed to get suggestions")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Follow handles POST /users/:id/follow
func (h *SocialHandler) Follow(c *gin.Context) {
	target, ok := paramID(c, "id")
	if !ok {
		return
	}
	status, err := h.social.Follow(c.Request.Context(), currentUser(c), target)
	if err != nil {
		respondError(c, err, "Failed to follow user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Unfollow handles DELETE /users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	target, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.social.Unfollow(c.Request.Context(), currentUser(c), target); err != nil {
		respondError(c, err, "Failed to unfollow user")
		return
	}
	c.Status(http.StatusNoContent)
}

// Followers handles GET /users/:id/followers
func (h *SocialHandler) Followers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	users, err := h.social.Followers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get followers")
		return
	}
	c.JSON(http.StatusOK, users)
}

// Following handles GET /users/:id/following
func (h *SocialHandler) Following(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	users, err := h.social.Following(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get following")
		return
	}
	c.JSON(http.StatusOK, users)
}

// RespondFollowRequest handles POST /follow-requests/:id/respond
func (h *SocialHandler) RespondFollowRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.social.RespondFollowRequest(c.Request.Context(), currentUser(c), id, req.Accept); err != nil {
		respondError(c, err, "Failed to respond to follow request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response recorded"})
}

// SendFriendRequest handles POST /users/:id/friend-request
func (h *SocialHandler) SendFriendRequest(c *gin.Context) {
	receiver, ok := paramID(c, "id")
	if !ok {
		return
	}
	req, err := h.social.SendFriendRequest(c.Request.Context(), currentUser(c), receiver)
	if err != nil {
		respondError(c, err, "Failed to send friend request")
		return
	}
	c.JSON(http.StatusCreated, req)
}

// RespondFriendRequest handles POST /friend-requests/:id/respond
func (h *SocialHandler) RespondFriendRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.social.RespondFriendRequest(c.Request.Context(), currentUser(c), id, req.Accept); err != nil {
		respondError(c, err, "Failed to respond to friend request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response recorded"})
}

// CreateGroup handles POST /groups
func (h *SocialHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	g, err := h.groups.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to create group")
		return
	}
	c.JSON(http.StatusCreated, g)
}

// InviteToGroup handles POST /groups/:id/invite
func (h *SocialHandler) InviteToGroup(c *gin.Context) {
	groupID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.InviteToGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.groups.Invite(c.Request.Context(), currentUser(c), groupID, req.UserID); err != nil {
		respondError(c, err, "Failed to send invitation")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Invitation sent"})
}
