package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "mySecurePassword123", hash)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "mySecurePassword123"))
	assert.Error(t, CheckPassword(hash, "wrongPassword"))
}

func TestHashPassword_EmptyString(t *testing.T) {
	hash, err := HashPassword("")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
