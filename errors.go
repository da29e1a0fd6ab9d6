package accounts

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// TextCodeDuplicateEmail marks a registration that collided with an
	// existing account's email.
	TextCodeDuplicateEmail = "DUPLICATE_EMAIL"
	// TextCodeAccountNotFound marks lookups for accounts that do not exist.
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	// TextCodeInvalidConfirmationToken marks a mismatched or already
	// consumed confirmation token.
	TextCodeInvalidConfirmationToken = "INVALID_CONFIRMATION_TOKEN"
	// TextCodeInvalidCredentials is the generic login failure code.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeAccountBlocked marks authentication attempts against a
	// blocked account. Never surfaced to the login form directly.
	TextCodeAccountBlocked = "ACCOUNT_BLOCKED"
	// TextCodeNoAccountsSelected marks a bulk operation invoked with an
	// empty selection.
	TextCodeNoAccountsSelected = "NO_ACCOUNTS_SELECTED"
	// TextCodeEmptyPassword marks an empty string given to the hasher.
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
	// TextCodeTokenExpired marks an expired session token.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks a session token we could not parse.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
)

// ErrDuplicateEmail is returned when the store reports a uniqueness
// conflict on the email column during registration.
var ErrDuplicateEmail = goerrors.New("email is already taken", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned when a confirmation or admin operation
// references an account that no longer exists.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryValidation).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidConfirmationToken is returned for mismatched tokens and for
// tokens that were already consumed. Redeeming twice is reported, never
// silently accepted.
var ErrInvalidConfirmationToken = goerrors.New("confirmation token is invalid or already used", goerrors.CategoryConflict).
	WithTextCode(TextCodeInvalidConfirmationToken).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is the single generic outcome for login failures.
// Wrong password, unknown email, and blocked accounts all collapse into it
// so the form does not leak which one applied.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountBlocked is returned internally when authentication is denied
// because the account is administratively blocked.
var ErrAccountBlocked = goerrors.New("account is blocked", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountBlocked).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoAccountsSelected is returned when a bulk operation receives an
// empty id selection. Distinct from a selection that matches nothing.
var ErrNoAccountsSelected = goerrors.New("no accounts selected", goerrors.CategoryValidation).
	WithTextCode(TextCodeNoAccountsSelected).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString is returned by the password hasher for empty input.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal password comparison failure.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for expired session tokens.
var ErrTokenExpired = goerrors.New("session token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for session tokens we could not parse.
var ErrTokenMalformed = goerrors.New("session token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = errors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data")

// IsDuplicateEmail reports whether err is the email uniqueness conflict,
// either our own rich error or the raw constraint violation surfaced by
// the storage driver. Uniqueness is enforced by the database, not by a
// read-then-write check, so concurrent registrations both reach the store
// and exactly one of them observes this error.
func IsDuplicateEmail(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeDuplicateEmail {
		return true
	}

	return isUniqueViolation(err)
}

// isUniqueViolation recognizes the constraint error of both backends we
// run against: postgres class 23505 and sqlite's UNIQUE message.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsAccountNotFound checks for the not-found outcome from either our own
// rich error or the repository's record-not-found error.
func IsAccountNotFound(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeAccountNotFound {
		return true
	}

	return goerrors.IsNotFound(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
