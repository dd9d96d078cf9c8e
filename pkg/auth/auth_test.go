package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndValidate(t *testing.T) {
	manager, err := NewJWTManager(JWTConfig{SecretKey: "test-secret", Issuer: "forum-api", Audience: []string{"forum"}})
	require.NoError(t, err)

	token, expiresAt, err := manager.Issue("user-1", "a@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), expiresAt, time.Minute)

	claims, err := manager.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestJWTManager_ValidateToken_Rejects(t *testing.T) {
	manager, err := NewJWTManager(JWTConfig{SecretKey: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	other, err := NewJWTManager(JWTConfig{SecretKey: "other-secret"})
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := manager.ValidateToken("  ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, _, err := other.Issue("user-1", "")
		require.NoError(t, err)
		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := manager.Issue("user-1", "")
		require.NoError(t, err)
		manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { manager.now = time.Now }()

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager(JWTConfig{})
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, hasher.Compare(hash, "hunter22"))
	assert.ErrorIs(t, hasher.Compare(hash, "hunter23"), ErrPasswordMismatch)
}
