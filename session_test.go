package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionObject(t *testing.T) {
	userID := uuid.New().String()
	now := time.Now()
	sessionData := map[string]any{
		"source": "login",
	}

	session := &accounts.SessionObject{
		UserID:         userID,
		Audience:       []string{"app:user"},
		Issuer:         "test-issuer",
		IssuedAt:       &now,
		ExpirationDate: &now,
		Data:           sessionData,
	}

	// Test GetUserID
	assert.Equal(t, userID, session.GetUserID())

	// Test GetUserUUID
	userUUID, err := session.GetUserUUID()
	assert.NoError(t, err)
	assert.Equal(t, userID, userUUID.String())

	// Test GetAudience
	assert.Equal(t, []string{"app:user"}, session.GetAudience())

	// Test GetIssuer
	assert.Equal(t, "test-issuer", session.GetIssuer())

	// Test GetIssuedAt
	assert.Equal(t, &now, session.GetIssuedAt())

	// Test GetData
	assert.Equal(t, sessionData, session.GetData())

	// Test String method
	stringRep := session.String()
	assert.Contains(t, stringRep, userID)
	assert.Contains(t, stringRep, "app:user")
	assert.Contains(t, stringRep, "test-issuer")
}

func TestSessionFromClaims(t *testing.T) {
	userID := uuid.New().String()
	now := time.Now()
	expTime := now.Add(time.Hour)

	claims := jwt.MapClaims{
		"sub": userID,
		"aud": []string{"test-audience"},
		"iss": "test-issuer",
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(expTime),
	}

	auther := createTestAuthenticator(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("test-signing-key"))
	assert.NoError(t, err)

	session, err := auther.SessionFromToken(tokenString)
	assert.NoError(t, err)

	assert.Equal(t, userID, session.GetUserID())
	assert.Equal(t, []string{"test-audience"}, session.GetAudience())
	assert.Equal(t, "test-issuer", session.GetIssuer())
}

// Helper function to create a test authenticator
func createTestAuthenticator(_ *testing.T) accounts.Authenticator {
	provider := &mockIdentityProvider{}

	return accounts.NewAuthenticator(provider, testConfig{})
}

// Mock implementations for testing

type mockIdentityProvider struct {
	identity accounts.Identity
	err      error
}

func (m *mockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (accounts.Identity, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.identity != nil {
		return m.identity, nil
	}
	return &stubIdentity{
		id:    uuid.New().String(),
		email: "test@example.com",
		name:  "Test User",
	}, nil
}

func (m *mockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (accounts.Identity, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.identity != nil {
		return m.identity, nil
	}
	return &stubIdentity{
		id:    identifier,
		email: "test@example.com",
		name:  "Test User",
	}, nil
}

type stubIdentity struct {
	id      string
	email   string
	name    string
	blocked bool
}

func (m *stubIdentity) ID() string    { return m.id }
func (m *stubIdentity) Email() string { return m.email }
func (m *stubIdentity) Name() string  { return m.name }
func (m *stubIdentity) Blocked() bool { return m.blocked }
