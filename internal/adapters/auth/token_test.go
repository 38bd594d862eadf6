package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthority_Issue(t *testing.T) {
	secret := "test-secret"
	authority := NewJWTAuthority(secret)

	token, err := authority.Issue("user-123", "u@example.com", "usher", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "usher", claims.Role)
}

func TestJWTAuthority_Verify_RoundTrip(t *testing.T) {
	authority := NewJWTAuthority("test-secret")

	token, err := authority.Issue("user-123", "u@example.com", "admin", time.Hour)
	require.NoError(t, err)

	userID, role, err := authority.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.Equal(t, "admin", role)
}

func TestJWTAuthority_Verify_WrongSecret(t *testing.T) {
	token, err := NewJWTAuthority("secret-a").Issue("user-123", "u@example.com", "admin", time.Hour)
	require.NoError(t, err)

	_, _, err = NewJWTAuthority("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWTAuthority_Verify_Expired(t *testing.T) {
	authority := NewJWTAuthority("test-secret")
	token, err := authority.Issue("user-123", "u@example.com", "usher", -time.Minute)
	require.NoError(t, err)

	_, _, err = authority.Verify(token)
	assert.Error(t, err)
}
