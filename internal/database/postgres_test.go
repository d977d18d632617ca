package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_Commit(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{DB: sqlDB}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE groups`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = db.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE groups SET current_members = current_members + 1`)
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{DB: sqlDB}

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = db.WithTx(context.Background(), func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_UniqueAscendingVersions(t *testing.T) {
	seen := map[int]bool{}
	for _, m := range Migrations {
		assert.False(t, seen[m.Version], "duplicate migration version %d", m.Version)
		seen[m.Version] = true
		assert.NotEmpty(t, m.Up)
		assert.NotEmpty(t, m.Down)
	}
}

func TestBackupTablesExistInMigrations(t *testing.T) {
	var all string
	for _, m := range Migrations {
		all += m.Up
	}
	for _, table := range []string{
		"profiles", "events", "services", "bookings", "service_bookings", "categories",
		"service_categories", "notifications", "user_wallets", "wallet_transactions",
		"system_logs", "system_settings",
	} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
