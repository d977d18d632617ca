package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := NewJWTService("test-secret-key", 24)

	userID := uuid.New()
	token, err := service.GenerateToken(userID, "admin@adrena.test")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin@adrena.test", claims.Email)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestJWTService_ValidateToken_Invalid(t *testing.T) {
	service := NewJWTService("test-secret-key", 24)

	_, err := service.ValidateToken("invalid.token.here")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 24).GenerateToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 24).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	// negative expiry produces a token that is already expired
	service := NewJWTService("test-secret-key", -1)

	token, err := service.GenerateToken(uuid.New(), "user@adrena.test")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RejectsNoneAlg(t *testing.T) {
	claims := Claims{UserID: uuid.New()}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret-key", 24).ValidateToken(signed)
	assert.Error(t, err)
}
