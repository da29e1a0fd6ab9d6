package accounts_test

import (
	"errors"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateEmail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rich duplicate email error",
			err:      accounts.ErrDuplicateEmail,
			expected: true,
		},
		{
			name: "wrapped duplicate email error",
			err: goerrors.Wrap(accounts.ErrDuplicateEmail, goerrors.CategoryConflict, "registration failed").
				WithTextCode(accounts.TextCodeDuplicateEmail),
			expected: true,
		},
		{
			name:     "postgres unique violation",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"},
			expected: true,
		},
		{
			name:     "sqlite unique violation",
			err:      errors.New("constraint failed: UNIQUE constraint failed: accounts.email (2067)"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: false,
		},
		{
			name:     "unrelated postgres error",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, accounts.IsDuplicateEmail(tt.err))
		})
	}
}

func TestIsAccountNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rich account not found",
			err:      accounts.ErrAccountNotFound,
			expected: true,
		},
		{
			name:     "repository not found",
			err:      repository.NewRecordNotFound(),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("boom"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, accounts.IsAccountNotFound(tt.err))
		})
	}
}

func TestTokenErrorHelpers(t *testing.T) {
	assert.True(t, accounts.IsTokenExpiredError(accounts.ErrTokenExpired))
	assert.True(t, accounts.IsTokenExpiredError(errors.New("token is expired by 1h")))
	assert.False(t, accounts.IsTokenExpiredError(nil))
	assert.False(t, accounts.IsTokenExpiredError(errors.New("boom")))

	assert.True(t, accounts.IsMalformedError(errors.New("token is malformed")))
	assert.True(t, accounts.IsMalformedError(errors.New("missing or malformed JWT")))
	assert.False(t, accounts.IsMalformedError(nil))
	assert.False(t, accounts.IsMalformedError(errors.New("boom")))
}
