package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse/backend/internal/domain/identity"
	"github.com/warehouse/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 15 * time.Minute,
		Issuer:     "test-issuer",
	}
	return NewJWTService(cfg)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(userID, "alice", identity.RoleTeamLeader)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	ident, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, ident.UserID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, identity.RoleTeamLeader, ident.Role)
}

func TestJWTService_GenerateToken_RejectsUnknownRole(t *testing.T) {
	svc := newTestJWTService()

	_, _, err := svc.GenerateToken(uuid.New(), "alice", identity.Role("SUPERVISOR"))

	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestJWTService_ValidateToken_Errors(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		svc := newTestJWTService()

		_, err := svc.ValidateToken("not-a-token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc := newTestJWTService()
		other := NewJWTService(config.JWTConfig{
			Secret:     "a-completely-different-secret-key",
			Expiration: 15 * time.Minute,
			Issuer:     "test-issuer",
		})
		token, _, err := other.GenerateToken(uuid.New(), "alice", identity.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:     "test-secret-key-at-least-32-chars",
			Expiration: -time.Minute,
			Issuer:     "test-issuer",
		})
		token, _, err := svc.GenerateToken(uuid.New(), "alice", identity.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
