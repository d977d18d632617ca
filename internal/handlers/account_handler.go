package handlers

import (
	"context"
	"net/http"

	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BadgeService interface {
	Stats(ctx context.Context, userID uuid.UUID) (models.UserStats, error)
	BadgeProgress(ctx context.Context, userID uuid.UUID) ([]models.BadgeProgress, error)
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]models.Badge, error)
}

type WalletService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*wallet.Summary, error)
	Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, req models.WithdrawalRequest) (*models.WalletTransaction, error)
}

// AccountHandler serves the user's badges and wallet
type AccountHandler struct {
	badges  BadgeService
	wallets WalletService
}

func NewAccountHandler(badges BadgeService, wallets WalletService) *AccountHandler {
	return &AccountHandler{badges: badges, wallets: wallets}
}

// Stats handles GET /me/stats
func (h *AccountHandler) Stats(c *gin.Context) {
	stats, err := h.badges.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// BadgeProgress handles GET /me/badges
func (h *AccountHandler) BadgeProgress(c *gin.Context) {
	progress, err := h.badges.BadgeProgress(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to get badge progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// CheckBadges handles POST /me/badges/check
func (h *AccountHandler) CheckBadges(c *gin.Context) {
	awarded, err := h.badges.CheckAndAward(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to check badges")
		return
	}
	if awarded == nil {
		awarded = []models.Badge{}
	}
	c.JSON(http.StatusOK, gin.H{"awarded": awarded})
}

// Wallet handles GET /me/wallet
func (h *AccountHandler) Wallet(c *gin.Context) {
	summary, err := h.wallets.Summary(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Failed to get wallet")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Transactions handles GET /me/wallet/transactions
func (h *AccountHandler) Transactions(c *gin.Context) {
	txs, err := h.wallets.Transactions(c.Request.Context(), currentUser(c), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err, "Failed to get transactions")
		return
	}
	c.JSON(http.StatusOK, txs)
}

// Withdraw handles POST /me/wallet/withdrawals
func (h *AccountHandler) Withdraw(c *gin.Context) {
	var req models.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := h.wallets.RequestWithdrawal(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to request withdrawal")
		return
	}
	c.JSON(http.StatusCreated, tx)
}
