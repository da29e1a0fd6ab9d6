package accounts_test

import (
	"context"
	"database/sql"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAuthenticator implements accounts.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Impersonate(ctx context.Context, identifier string) (string, error) {
	args := m.Called(ctx, identifier)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (accounts.Session, error) {
	args := m.Called(token)
	return args.Get(0).(accounts.Session), args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session accounts.Session) (accounts.Identity, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(accounts.Identity), args.Error(1)
}

func (m *MockAuthenticator) Validator() accounts.TokenValidator {
	args := m.Called()
	return args.Get(0).(accounts.TokenValidator)
}

// MockLoginPayload implements accounts.LoginPayload
type MockLoginPayload struct {
	Identifier      string
	Password        string
	ExtendedSession bool
}

func (m MockLoginPayload) GetIdentifier() string {
	return m.Identifier
}

func (m MockLoginPayload) GetPassword() string {
	return m.Password
}

func (m MockLoginPayload) GetExtendedSession() bool {
	return m.ExtendedSession
}

// MockRepositoryManager implements accounts.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Accounts() accounts.Accounts {
	args := m.Called()
	return args.Get(0).(accounts.Accounts)
}

// MockAccounts implements the parts of accounts.Accounts the handlers touch.
type MockAccounts struct {
	mock.Mock
	accounts.Accounts
}

func (m *MockAccounts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*accounts.Account, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.Account, criteria ...repository.InsertCriteria) (*accounts.Account, error) {
	args := m.Called(ctx, tx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccounts) ConfirmEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	args := m.Called(ctx, tx, id, token)
	return args.Error(0)
}

func (m *MockAccounts) TrackSuccessfulLogin(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccounts) BlockTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccounts) UnblockTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccounts) DeleteManyByIDsTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccounts) DeleteUnverifiedTx(ctx context.Context, tx bun.IDB, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccounts) ListByLastLogin(ctx context.Context, criteria ...repository.SelectCriteria) ([]*accounts.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accounts.Account), args.Error(1)
}

// stubRepoManager runs transaction closures directly so errors returned by
// the closure surface the way they do against a real database.
type stubRepoManager struct {
	store accounts.Accounts
}

func (s stubRepoManager) Validate() error { return nil }

func (s stubRepoManager) MustValidate() {}

func (s stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (s stubRepoManager) Accounts() accounts.Accounts {
	return s.store
}

// MockConfirmationNotifier implements accounts.ConfirmationNotifier
type MockConfirmationNotifier struct {
	mock.Mock
}

func (m *MockConfirmationNotifier) SendConfirmation(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// testConfig implements accounts.Config
type testConfig struct {
	signingKey string
	contextKey string
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetSigningMethod() string { return "HS256" }

func (c testConfig) GetContextKey() string {
	if c.contextKey == "" {
		return "app_session"
	}
	return c.contextKey
}

func (c testConfig) GetTokenExpiration() int       { return 24 }
func (c testConfig) GetExtendedTokenDuration() int { return 168 }
func (c testConfig) GetTokenLookup() string        { return "cookie:app_session" }
func (c testConfig) GetAuthScheme() string         { return "Bearer" }
func (c testConfig) GetIssuer() string             { return "test-issuer" }
func (c testConfig) GetAudience() []string         { return []string{"test-audience"} }
func (c testConfig) GetRejectedRouteKey() string   { return "rejected_route" }
func (c testConfig) GetRejectedRouteDefault() string {
	return "/"
}

// MockContext mocks the router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
