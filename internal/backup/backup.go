// Package backup serves the backup-database function: an admin-only endpoint
// that dumps a fixed set of tables to a JSON document in object storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adrena/backend/internal/auth"
	"github.com/adrena/backend/internal/metrics"
	"github.com/adrena/backend/internal/middleware"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Tables are dumped in this order
var Tables = []string{
	"profiles",
	"events",
	"services",
	"bookings",
	"service_bookings",
	"categories",
	"service_categories",
	"notifications",
	"user_wallets",
	"wallet_transactions",
	"system_logs",
	"system_settings",
}

const formatVersion = "1.0"

var (
	errNotConfigured = errors.New("storage is not configured")
	errNoToken       = errors.New("missing authorization header")
	errNotAdmin      = errors.New("admin access required")
)

type Store interface {
	DumpTable(ctx context.Context, table string) (json.RawMessage, error)
	InsertSystemLog(ctx context.Context, level, message string, details map[string]any, userID *uuid.UUID) error
}

type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Document is the uploaded file
type Document struct {
	Timestamp string                     `json:"timestamp"`
	Version   string                     `json:"version"`
	Tables    map[string]json.RawMessage `json:"tables"`
}

type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	FileName       string `json:"fileName"`
	TablesBackedUp int    `json:"tablesBackedUp"`
}

type Handler struct {
	store    Store
	tokens   TokenValidator
	roles    middleware.RoleLookup
	uploader storage.Uploader
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewHandler builds the function. uploader is nil when storage is not configured.
func NewHandler(store Store, tokens TokenValidator, roles middleware.RoleLookup, uploader storage.Uploader, m *metrics.Metrics, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:    store,
		tokens:   tokens,
		roles:    roles,
		uploader: uploader,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func setCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// Options answers the CORS pre-flight
func (h *Handler) Options(c *gin.Context) {
	setCORS(c)
	c.Status(http.StatusOK)
}

// Backup handles POST /functions/v1/backup-database. Every failure is a 500
// carrying the reason in details.
func (h *Handler) Backup(c *gin.Context) {
	setCORS(c)

	res, err := h.run(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.metrics.ObserveBackup("error")
		h.log.WithError(err).Error("backup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Backup failed",
			"details": err.Error(),
		})
		return
	}

	h.metrics.ObserveBackup("ok")
	c.JSON(http.StatusOK, res)
}

func (h *Handler) run(ctx context.Context, authorization string) (*Result, error) {
	if h.uploader == nil {
		return nil, errNotConfigured
	}

	token, ok := middleware.BearerToken(authorization)
	if !ok {
		return nil, errNoToken
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	role, err := h.roles.GetRole(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}
	if role != models.RoleAdmin {
		return nil, errNotAdmin
	}

	started := h.now().UTC()
	doc := Document{
		Timestamp: started.Format(isoLayout),
		Version:   formatVersion,
		Tables:    make(map[string]json.RawMessage, len(Tables)),
	}
	for _, table := range Tables {
		rows, err := h.store.DumpTable(ctx, table)
		if err != nil {
			// a table that cannot be read is left out of the backup
			h.log.WithError(err).WithField("table", table).Warn("skipping table")
			continue
		}
		doc.Tables[table] = rows
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	fileName := FileName(started)
	if err := h.uploader.Upload(ctx, fileName, bytes.NewReader(body)); err != nil {
		return nil, err
	}

	details := map[string]any{
		"fileName":       fileName,
		"tablesBackedUp": len(doc.Tables),
		"sizeBytes":      len(body),
	}
	if url := h.uploader.URL(fileName); url != "" {
		details["url"] = url
	}
	if err := h.store.InsertSystemLog(ctx, "info", "Database backup completed", details, &claims.UserID); err != nil {
		h.log.WithError(err).Warn("failed to record backup in system log")
	}

	h.log.WithFields(logrus.Fields{
		"file":    fileName,
		"tables":  len(doc.Tables),
		"user_id": claims.UserID,
	}).Info("backup uploaded")

	return &Result{
		Success:        true,
		Message:        "Backup completed successfully",
		FileName:       fileName,
		TablesBackedUp: len(doc.Tables),
	}, nil
}

const isoLayout = "2006-01-02T15:04:05.000Z"

var isoReplacer = strings.NewReplacer(":", "-", ".", "-")

// FileName is the storage key for a backup taken at t, e.g.
// backups/backup_2024-03-01T10-15-30-123Z.json
func FileName(t time.Time) string {
	return "backups/backup_" + isoReplacer.Replace(t.UTC().Format(isoLayout)) + ".json"
}
