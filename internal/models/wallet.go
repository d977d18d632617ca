package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	PendingBalance decimal.Decimal `json:"pending_balance" db:"pending_balance"`
	TotalEarned    decimal.Decimal `json:"total_earned" db:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn" db:"total_withdrawn"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Available is what can still be requested for withdrawal
func (w Wallet) Available(pendingWithdrawals decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(pendingWithdrawals)
}

const (
	TransactionEarning    = "earning"
	TransactionWithdrawal = "withdrawal"
	TransactionRefund     = "refund"

	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

type WalletTransaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Type        string          `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Status      string          `json:"status" db:"status"`
	Description *string         `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"required,oneof=bank_transfer stc_pay"`
	Destination string          `json:"destination" binding:"required,max=100"`
}
