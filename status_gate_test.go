package accounts_test

import (
	"context"
	"errors"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func gateClaims(id uuid.UUID) *accounts.JWTClaims {
	return &accounts.JWTClaims{UID: id.String()}
}

func TestAccountStatusGate(t *testing.T) {
	cfg := testConfig{}

	t.Run("passes through when account is in good standing", func(t *testing.T) {
		tracker := new(MockAccountTracker)
		accountID := uuid.New()
		account := &accounts.Account{
			ID:    accountID,
			Email: "ada@example.com",
		}

		tracker.On("GetByIdentifier", mock.Anything, accountID.String()).
			Return(account, nil).Once()

		ctx := router.NewMockContext()
		ctx.LocalsMock[cfg.GetContextKey()] = gateClaims(accountID)
		ctx.On("Context").Return(context.Background())
		ctx.On("SetContext", mock.Anything).Return()

		handlerCalled := false
		handler := func(c router.Context) error {
			handlerCalled = true
			return nil
		}

		gate := accounts.NewAccountStatusGate(tracker, cfg)

		err := gate.Middleware()(handler)(ctx)

		require.NoError(t, err)
		require.True(t, handlerCalled)

		tracker.AssertExpectations(t)
	})

	t.Run("terminates session when account was deleted", func(t *testing.T) {
		tracker := new(MockAccountTracker)
		accountID := uuid.New()

		tracker.On("GetByIdentifier", mock.Anything, accountID.String()).
			Return(nil, repository.NewRecordNotFound()).Once()

		ctx := router.NewMockContext()
		ctx.LocalsMock[cfg.GetContextKey()] = gateClaims(accountID)
		ctx.On("Context").Return(context.Background())
		ctx.On("Path").Return("/admin/accounts").Maybe()
		ctx.On("Cookie", mock.Anything).Return().Maybe()
		ctx.On("Redirect", "/login", mock.Anything).Return(nil)

		handlerCalled := false
		handler := func(c router.Context) error {
			handlerCalled = true
			return nil
		}

		gate := accounts.NewAccountStatusGate(tracker, cfg)

		err := gate.Middleware()(handler)(ctx)

		require.NoError(t, err)
		require.False(t, handlerCalled)

		tracker.AssertExpectations(t)
		ctx.AssertCalled(t, "Redirect", "/login", mock.Anything)
	})

	t.Run("terminates session when account was blocked", func(t *testing.T) {
		tracker := new(MockAccountTracker)
		accountID := uuid.New()
		account := &accounts.Account{
			ID:      accountID,
			Blocked: true,
		}

		tracker.On("GetByIdentifier", mock.Anything, accountID.String()).
			Return(account, nil).Once()

		ctx := router.NewMockContext()
		ctx.LocalsMock[cfg.GetContextKey()] = gateClaims(accountID)
		ctx.On("Context").Return(context.Background())
		ctx.On("Path").Return("/admin/accounts").Maybe()
		ctx.On("Cookie", mock.Anything).Return().Maybe()
		ctx.On("Redirect", "/login", mock.Anything).Return(nil)

		handlerCalled := false
		handler := func(c router.Context) error {
			handlerCalled = true
			return nil
		}

		gate := accounts.NewAccountStatusGate(tracker, cfg)

		err := gate.Middleware()(handler)(ctx)

		require.NoError(t, err)
		require.False(t, handlerCalled)

		tracker.AssertExpectations(t)
	})

	t.Run("terminates session when claims are missing", func(t *testing.T) {
		tracker := new(MockAccountTracker)

		ctx := router.NewMockContext()
		ctx.On("Path").Return("/admin/accounts").Maybe()
		ctx.On("Cookie", mock.Anything).Return().Maybe()
		ctx.On("Redirect", "/login", mock.Anything).Return(nil)

		gate := accounts.NewAccountStatusGate(tracker, cfg)

		err := gate.Middleware()(func(c router.Context) error {
			t.Fatal("handler should not run without claims")
			return nil
		})(ctx)

		require.NoError(t, err)
		tracker.AssertNotCalled(t, "GetByIdentifier", mock.Anything, mock.Anything)
	})

	t.Run("terminates session on lookup failure", func(t *testing.T) {
		tracker := new(MockAccountTracker)
		accountID := uuid.New()

		tracker.On("GetByIdentifier", mock.Anything, accountID.String()).
			Return(nil, errors.New("database is locked")).Once()

		ctx := router.NewMockContext()
		ctx.LocalsMock[cfg.GetContextKey()] = gateClaims(accountID)
		ctx.On("Context").Return(context.Background())
		ctx.On("Path").Return("/admin/accounts").Maybe()
		ctx.On("Cookie", mock.Anything).Return().Maybe()
		ctx.On("Redirect", "/login", mock.Anything).Return(nil)

		gate := accounts.NewAccountStatusGate(tracker, cfg)

		err := gate.Middleware()(func(c router.Context) error {
			t.Fatal("handler should not run when the lookup fails")
			return nil
		})(ctx)

		require.NoError(t, err)
		tracker.AssertExpectations(t)
	})

	t.Run("custom login route", func(t *testing.T) {
		tracker := new(MockAccountTracker)

		ctx := router.NewMockContext()
		ctx.On("Path").Return("/dashboard").Maybe()
		ctx.On("Cookie", mock.Anything).Return().Maybe()
		ctx.On("Redirect", "/signin", mock.Anything).Return(nil)

		gate := accounts.NewAccountStatusGate(tracker, cfg).
			WithLoginRoute("/signin")

		err := gate.Middleware()(func(c router.Context) error {
			return nil
		})(ctx)

		require.NoError(t, err)
		ctx.AssertCalled(t, "Redirect", "/signin", mock.Anything)
	})
}
