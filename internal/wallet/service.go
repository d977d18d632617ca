// Package wallet exposes a provider's balance, ledger and withdrawal requests.
package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/adrena/backend/internal/guard"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrBelowMinimum      = errors.New("amount is below the minimum withdrawal")
	ErrInsufficientFunds = errors.New("amount exceeds available balance")
	ErrInProgress        = errors.New("a withdrawal request is already being processed")
)

type Store interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	PendingWithdrawals(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
	RequestWithdrawal(ctx context.Context, t *models.WalletTransaction, metadata map[string]any) error
}

// Summary is the wallet plus what can still be withdrawn
type Summary struct {
	models.Wallet
	PendingWithdrawals decimal.Decimal `json:"pending_withdrawals"`
	Available          decimal.Decimal `json:"available"`
}

type Service struct {
	store         Store
	inflight      *guard.InFlight
	minWithdrawal decimal.Decimal
	log           logrus.FieldLogger
}

func NewService(store Store, inflight *guard.InFlight, minWithdrawal decimal.Decimal, log logrus.FieldLogger) *Service {
	return &Service{store: store, inflight: inflight, minWithdrawal: minWithdrawal, log: log}
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.PendingWithdrawals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Summary{Wallet: *w, PendingWithdrawals: pending, Available: w.Available(pending)}, nil
}

func (s *Service) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	return s.store.ListTransactions(ctx, userID, limit, offset)
}

// RequestWithdrawal validates the amount and records a pending withdrawal.
// The balance itself is only debited when the payout completes.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uuid.UUID, req models.WithdrawalRequest) (*models.WalletTransaction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.Amount.LessThan(s.minWithdrawal) {
		return nil, ErrBelowMinimum
	}

	desc := "Withdrawal via " + req.Method
	tx := &models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        models.TransactionWithdrawal,
		Amount:      req.Amount.Round(2),
		Status:      models.TransactionPending,
		Description: &desc,
		CreatedAt:   time.Now(),
	}

	ran, err := s.inflight.Do(guard.Key(userID, "withdraw", userID), func() error {
		return s.store.RequestWithdrawal(ctx, tx, map[string]any{
			"method":      req.Method,
			"destination": req.Destination,
		})
	})
	if !ran {
		return nil, ErrInProgress
	}
	if errors.Is(err, repository.ErrInsufficientFunds) {
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  tx.Amount.String(),
		"method":  req.Method,
	}).Info("withdrawal requested")
	return tx, nil
}
