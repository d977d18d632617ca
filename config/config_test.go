package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("FTP_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Social.PopularThreshold)
	assert.Equal(t, "50", cfg.Wallet.MinWithdrawal.String())
	assert.False(t, cfg.Storage.Configured())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SUGGESTION_POPULAR_THRESHOLD", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 25, cfg.Social.PopularThreshold)
}

func TestLoad_InvalidMinWithdrawal(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("WALLET_MIN_WITHDRAWAL", "fifty")

	_, err := Load()
	assert.Error(t, err)
}
