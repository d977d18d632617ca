package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adrena/backend/internal/messaging"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/moderation"
	"github.com/adrena/backend/internal/notifications"
	"github.com/adrena/backend/internal/repository"
	"github.com/adrena/backend/internal/social"
	"github.com/adrena/backend/internal/wallet"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse sends a standardized error response
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// StatusFor maps domain errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrAlreadyMember),
		errors.Is(err, repository.ErrNotPending),
		errors.Is(err, repository.ErrGroupFull),
		errors.Is(err, moderation.ErrInProgress),
		errors.Is(err, wallet.ErrInProgress),
		errors.Is(err, social.ErrAlreadyInside):
		return http.StatusConflict
	case errors.Is(err, moderation.ErrReasonRequired),
		errors.Is(err, moderation.ErrInvalidKind),
		errors.Is(err, moderation.ErrInvalidAction),
		errors.Is(err, social.ErrSelf),
		errors.Is(err, messaging.ErrEmptyBody),
		errors.Is(err, messaging.ErrSelf),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrBelowMinimum),
		errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, notifications.ErrNoAction),
		errors.Is(err, notifications.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, social.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, messaging.ErrRateLimited), errors.Is(err, messaging.ErrRepeated):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// respondError answers with the mapped status. Unmapped errors are attached to
// the context for the request logger and reported with the generic message.
func respondError(c *gin.Context, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		ErrorResponse(c, status, fallback)
		return
	}
	ErrorResponse(c, status, err.Error())
}

func currentUser(c *gin.Context) uuid.UUID {
	v, _ := c.Get("user_id")
	id, _ := v.(uuid.UUID)
	return id
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// RegisterValidators adds the custom binding tags used by request models
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("report_reason", func(fl validator.FieldLevel) bool {
		reason := models.ReportReason(fl.Field().String())
		for _, r := range models.ReportReasons {
			if r == reason {
				return true
			}
		}
		return false
	}); err != nil {
		return err
	}
	return v.RegisterValidation("report_entity", func(fl validator.FieldLevel) bool {
		entity := fl.Field().String()
		for _, e := range models.ReportEntityTypes {
			if e == entity {
				return true
			}
		}
		return false
	})
}
