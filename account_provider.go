package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AccountTracker is a store we can use to retrieve accounts
type AccountTracker interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Account, error)
	TrackSuccessfulLogin(ctx context.Context, account *Account) error
}

// AccountProvider resolves identities against the accounts store
type AccountProvider struct {
	store  AccountTracker
	logger Logger
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountTracker) *AccountProvider {
	return &AccountProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *AccountProvider) WithLogger(l Logger) *AccountProvider {
	u.logger = l
	return u
}

// VerifyIdentity will find the account, compare to the password, and return identity.
// A missing account and a wrong password are indistinguishable to the caller.
func (u AccountProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	account, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if account == nil {
		return nil, ErrIdentityNotFound
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if account.Blocked {
		return nil, ErrAccountBlocked
	}

	// last_login_at moves only after the credentials checked out
	if err := u.store.TrackSuccessfulLogin(ctx, account); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	return accountIdentity{
		id:      account.ID.String(),
		email:   account.Email,
		name:    account.DisplayName(),
		blocked: account.Blocked,
	}, nil
}

func (u AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	account, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if account == nil {
		return nil, ErrIdentityNotFound
	}

	return accountIdentity{
		id:      account.ID.String(),
		email:   account.Email,
		name:    account.DisplayName(),
		blocked: account.Blocked,
	}, nil
}

type accountIdentity struct {
	id      string
	email   string
	name    string
	blocked bool
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Email() string {
	return a.email
}

func (a accountIdentity) Name() string {
	return a.name
}

func (a accountIdentity) Blocked() bool {
	return a.blocked
}

var _ Identity = accountIdentity{}
