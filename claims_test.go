package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims(t *testing.T) {
	now := time.Now()
	exp := now.Add(time.Hour)

	claims := &accounts.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "user-123", claims.UserID(), "UserID falls back to the subject")
	assert.WithinDuration(t, now, claims.IssuedAt(), time.Second)
	assert.WithinDuration(t, exp, claims.Expires(), time.Second)
}

func TestJWTClaimsUID(t *testing.T) {
	claims := &accounts.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-id"},
		UID:              "uid-wins",
	}

	assert.Equal(t, "subject-id", claims.Subject())
	assert.Equal(t, "uid-wins", claims.UserID())
}

func TestJWTClaimsZeroTimes(t *testing.T) {
	claims := &accounts.JWTClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}

func TestJWTClaimsMetadata(t *testing.T) {
	claims := &accounts.JWTClaims{
		Metadata: map[string]any{"impersonated": true},
	}

	meta := claims.ClaimsMetadata()
	assert.Equal(t, true, meta["impersonated"])

	empty := &accounts.JWTClaims{}
	assert.Nil(t, empty.ClaimsMetadata())
}
