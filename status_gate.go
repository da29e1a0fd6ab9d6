package accounts

import (
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// AccountStatusGate re-checks the account behind an already validated
// session on every request. A session whose account was blocked or
// deleted after the token was minted is terminated on the spot, the
// token alone is never proof the account is still welcome.
type AccountStatusGate struct {
	store      AccountTracker
	cfg        Config
	logger     Logger
	loginRoute string
}

func NewAccountStatusGate(store AccountTracker, cfg Config) *AccountStatusGate {
	return &AccountStatusGate{
		store:      store,
		cfg:        cfg,
		logger:     defLogger{},
		loginRoute: "/login",
	}
}

func (g *AccountStatusGate) WithLogger(l Logger) *AccountStatusGate {
	g.logger = l
	return g
}

func (g *AccountStatusGate) WithLoginRoute(route string) *AccountStatusGate {
	g.loginRoute = route
	return g
}

func (g *AccountStatusGate) Middleware() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := GetRouterClaims(ctx, g.cfg.GetContextKey())
			if !ok {
				return g.terminate(ctx, "missing session claims")
			}

			account, err := g.store.GetByIdentifier(ctx.Context(), claims.UserID())
			if err != nil {
				if repository.IsRecordNotFound(err) {
					return g.terminate(ctx, "account no longer exists")
				}
				g.logger.Error("status gate account lookup", "error", err)
				return g.terminate(ctx, "account lookup failed")
			}

			if account.Blocked {
				return g.terminate(ctx, "account is blocked")
			}

			ctx.SetContext(WithContext(ctx.Context(), account))

			return hf(ctx)
		}
	}
}

func (g *AccountStatusGate) terminate(ctx router.Context, reason string) error {
	g.logger.Warn("Terminating session", "reason", reason, "path", ctx.Path())

	// drop the session cookie so the next request starts logged out
	ctx.Cookie(&router.Cookie{
		Name:     g.cfg.GetContextKey(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	return flash.WithError(ctx, router.ViewContext{
		"system_message": "Your session is no longer valid. Please sign in again.",
	}).Redirect(g.loginRoute, router.StatusSeeOther)
}
