package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-ours"))
		require.NoError(t, err)
		return s
	}

	assert.True(t, TokenExpired(sign(jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), now, 0))
	assert.True(t, TokenExpired(sign(jwt.MapClaims{"exp": now.Add(2 * time.Second).Unix()}), now, 5*time.Second))
	assert.False(t, TokenExpired(sign(jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), now, 5*time.Second))
	assert.False(t, TokenExpired(sign(jwt.MapClaims{"sub": "7"}), now, 0), "no exp claim")
	assert.False(t, TokenExpired("opaque-token", now, 0))
	assert.False(t, TokenExpired("", now, 0))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}
