package wallet

import (
	"context"
	"testing"

	"github.com/adrena/backend/internal/guard"
	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	balance   decimal.Decimal
	requested []*models.WalletTransaction
}

func (f *fakeStore) GetWallet(_ context.Context, id uuid.UUID) (*models.Wallet, error) {
	return &models.Wallet{UserID: id, Balance: f.balance}, nil
}

func (f *fakeStore) pending() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range f.requested {
		sum = sum.Add(t.Amount)
	}
	return sum
}

func (f *fakeStore) PendingWithdrawals(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return f.pending(), nil
}

func (f *fakeStore) ListTransactions(context.Context, uuid.UUID, int, int) ([]models.WalletTransaction, error) {
	return nil, nil
}

func (f *fakeStore) RequestWithdrawal(_ context.Context, t *models.WalletTransaction, _ map[string]any) error {
	if t.Amount.GreaterThan(f.balance.Sub(f.pending())) {
		return repository.ErrInsufficientFunds
	}
	f.requested = append(f.requested, t)
	return nil
}

func newWallet(balance int64) (*Service, *fakeStore) {
	store := &fakeStore{balance: decimal.NewFromInt(balance)}
	return NewService(store, guard.New(), decimal.NewFromInt(50), logger.Discard()), store
}

func withdrawal(amount string) models.WithdrawalRequest {
	return models.WithdrawalRequest{Amount: decimal.RequireFromString(amount), Method: "bank_transfer", Destination: "SA00"}
}

func TestRequestWithdrawal_Validation(t *testing.T) {
	svc, store := newWallet(500)

	_, err := svc.RequestWithdrawal(context.Background(), uuid.New(), withdrawal("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.RequestWithdrawal(context.Background(), uuid.New(), withdrawal("-10"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.RequestWithdrawal(context.Background(), uuid.New(), withdrawal("49.99"))
	assert.ErrorIs(t, err, ErrBelowMinimum)
	assert.Empty(t, store.requested)
}

func TestRequestWithdrawal_CountsPending(t *testing.T) {
	svc, store := newWallet(120)
	user := uuid.New()

	tx, err := svc.RequestWithdrawal(context.Background(), user, withdrawal("70"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionPending, tx.Status)
	assert.Equal(t, models.TransactionWithdrawal, tx.Type)

	_, err = svc.RequestWithdrawal(context.Background(), user, withdrawal("60"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Len(t, store.requested, 1)

	sum, err := svc.Summary(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "50", sum.Available.String())
}

func TestRequestWithdrawal_InFlight(t *testing.T) {
	svc, _ := newWallet(500)
	user := uuid.New()

	key := guard.Key(user, "withdraw", user)
	require.True(t, svc.inflight.TryAcquire(key))
	defer svc.inflight.Release(key)

	_, err := svc.RequestWithdrawal(context.Background(), user, withdrawal("100"))
	assert.ErrorIs(t, err, ErrInProgress)
}
