package handlers

import (
	"context"
	"net/http"

	"github.com/adrena/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ModerationService interface {
	Pending(ctx context.Context, kind models.ModerationKind, limit int) ([]models.ModerationItem, error)
	Stats(ctx context.Context) (*models.ModerationStats, error)
	ActivityLog(ctx context.Context, f models.ActivityLogFilter) ([]models.ActivityLogEntry, error)
	Moderate(ctx context.Context, actor uuid.UUID, kind models.ModerationKind, id uuid.UUID, action models.ModerationAction, comment string) error
	SubmitReport(ctx context.Context, reporter uuid.UUID, req models.CreateReportRequest) (*models.EntityReport, error)
	Reports(ctx context.Context, status string, limit int) ([]models.EntityReport, error)
	ReviewReport(ctx context.Context, actor, id uuid.UUID, req models.ReviewReportRequest) error
}

// ModerationHandler serves the admin back office and user reports
type ModerationHandler struct {
	service ModerationService
}

func NewModerationHandler(service ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// ListPending handles GET /admin/moderation/:kind
func (h *ModerationHandler) ListPending(c *gin.Context) {
	kind := models.ModerationKind(c.Param("kind"))
	items, err := h.service.Pending(c.Request.Context(), kind, queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err, "Failed to get pending items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Stats handles GET /admin/stats
func (h *ModerationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ActivityLog handles GET /admin/activity
func (h *ModerationHandler) ActivityLog(c *gin.Context) {
	var f models.ActivityLogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := h.service.ActivityLog(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to get activity log")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Moderate handles POST /admin/moderation/:kind/:id
func (h *ModerationHandler) Moderate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	kind := models.ModerationKind(c.Param("kind"))
	if err := h.service.Moderate(c.Request.Context(), currentUser(c), kind, id, req.Action, req.Comment); err != nil {
		respondError(c, err, "Failed to apply moderation action")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Moderation action applied"})
}

// Delete handles DELETE /admin/moderation/:kind/:id
func (h *ModerationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	kind := models.ModerationKind(c.Param("kind"))
	if err := h.service.Moderate(c.Request.Context(), currentUser(c), kind, id, models.ActionDelete, ""); err != nil {
		respondError(c, err, "Failed to delete item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// SubmitReport handles POST /reports
func (h *ModerationHandler) SubmitReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.service.SubmitReport(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to submit report")
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports handles GET /admin/reports?status=
func (h *ModerationHandler) ListReports(c *gin.Context) {
	reports, err := h.service.Reports(c.Request.Context(), c.DefaultQuery("status", models.ReportPending), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err, "Failed to get reports")
		return
	}
	c.JSON(http.StatusOK, reports)
}

// ReviewReport handles POST /admin/reports/:id/review
func (h *ModerationHandler) ReviewReport(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.ReviewReport(c.Request.Context(), currentUser(c), id, req); err != nil {
		respondError(c, err, "Failed to review report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report updated"})
}
