package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute, time.Hour)

	token, err := maker.GenerateToken("grace", "user", "550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "grace", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", claims.UserUID)
	assert.Equal(t, "access", claims.Kind)
}

func TestMaker_RefreshKind(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute, time.Hour)

	token, err := maker.GenerateRefreshToken("grace", "user", "uid-1")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Kind)
}

func TestMaker_ExpiredToken(t *testing.T) {
	maker := NewJWTMaker("test-secret", -time.Minute, time.Hour)

	token, err := maker.GenerateToken("grace", "user", "uid-1")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_WrongSecret(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute, time.Hour)
	other := NewJWTMaker("other-secret", time.Minute, time.Hour)

	token, err := maker.GenerateToken("grace", "user", "uid-1")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}
