package accounts

import (
	"context"

	"github.com/goliatone/go-router"
)

var accountCtxKey = &contextKey{"account"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the Account in the given context
func WithContext(r context.Context, account *Account) context.Context {
	return context.WithValue(r, accountCtxKey, account)
}

// FromContext finds the account from the context.
func FromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user" // Default key used by JWT middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}
