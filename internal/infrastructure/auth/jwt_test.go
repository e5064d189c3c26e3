package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/backend/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-used-only-in-unit-tests!",
		AccessTokenExpiration: expiration,
		Issuer:                "inventra-test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService(time.Hour)
	tenantID := uuid.New()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateAccessToken(tenantID, userID, "alex")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alex", claims.Username)
	assert.Equal(t, "inventra-test", claims.Issuer)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New(), "alex")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newTestService(time.Hour)

	_, err := svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuing := newTestService(time.Hour)
	validating := NewJWTService(config.JWTConfig{
		Secret:                "a-different-secret-entirely!!!!!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "inventra-test",
	})

	token, _, err := issuing.GenerateAccessToken(uuid.New(), uuid.New(), "alex")
	require.NoError(t, err)

	_, err = validating.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
