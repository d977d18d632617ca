package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	db *database.DB
}

func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetWallet returns a zero wallet for users that never earned anything
func (r *WalletRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	w := &models.Wallet{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT balance, pending_balance, total_earned, total_withdrawn, updated_at
		FROM user_wallets WHERE user_id = $1`, userID,
	).Scan(&w.Balance, &w.PendingBalance, &w.TotalEarned, &w.TotalWithdrawn, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// PendingWithdrawals sums withdrawal requests not yet paid out
func (r *WalletRepository) PendingWithdrawals(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return pendingWithdrawals(ctx, r.db, userID)
}

func pendingWithdrawals(ctx context.Context, q queryer, userID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
		WHERE user_id = $1 AND type = $2 AND status = $3`,
		userID, models.TransactionWithdrawal, models.TransactionPending,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum pending withdrawals: %w", err)
	}
	return sum, nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, status, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	res := []models.WalletTransaction{}
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// RequestWithdrawal locks the wallet row, checks the amount against the
// balance minus what is already pending, and records the pending withdrawal.
func (r *WalletRepository) RequestWithdrawal(ctx context.Context, t *models.WalletTransaction, metadata map[string]any) error {
	meta, err := marshalJSON(metadata)
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM user_wallets WHERE user_id = $1 FOR UPDATE`, t.UserID,
		).Scan(&balance)
		if err == sql.ErrNoRows {
			return ErrInsufficientFunds
		}
		if err != nil {
			return fmt.Errorf("failed to lock wallet: %w", err)
		}

		pending, err := pendingWithdrawals(ctx, tx, t.UserID)
		if err != nil {
			return err
		}
		if t.Amount.GreaterThan(balance.Sub(pending)) {
			return ErrInsufficientFunds
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO wallet_transactions (id, user_id, type, amount, status, description, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.UserID, t.Type, t.Amount, t.Status, t.Description, meta, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert withdrawal: %w", err)
		}
		return nil
	})
}
