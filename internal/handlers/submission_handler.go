package handlers

import (
	"context"
	"net/http"

	"github.com/adrena/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionService interface {
	SubmitEvent(ctx context.Context, userID uuid.UUID, req models.CreateEventRequest) (*models.Event, error)
	SubmitService(ctx context.Context, userID uuid.UUID, req models.CreateServiceRequest) (*models.Service, error)
	ApplyAsProvider(ctx context.Context, userID uuid.UUID, req models.CreateProviderApplicationRequest) (*models.ProviderApplication, error)
}

// SubmissionHandler accepts items that wait for admin approval
type SubmissionHandler struct {
	service SubmissionService
}

func NewSubmissionHandler(service SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

func (h *SubmissionHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.service.SubmitEvent(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *SubmissionHandler) CreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.service.SubmitService(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SubmissionHandler) ApplyAsProvider(c *gin.Context) {
	var req models.CreateProviderApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.ApplyAsProvider(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to submit application")
		return
	}
	c.JSON(http.StatusCreated, a)
}
