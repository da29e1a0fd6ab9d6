package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// Account is the persisted identity record and its lifecycle flags.
type Account struct {
	bun.BaseModel     `bun:"table:accounts,alias:acc"`
	ID                uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName         string         `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName          string         `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email             string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone             string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash      string         `bun:"password_hash" json:"password_hash,omitempty"`
	EmailConfirmed    bool           `bun:"is_email_confirmed" json:"is_email_confirmed,omitempty"`
	ConfirmationToken string         `bun:"confirmation_token,nullzero" json:"-"`
	Blocked           bool           `bun:"is_blocked" json:"is_blocked,omitempty"`
	RegisteredAt      *time.Time     `bun:"registered_at,nullzero" json:"registered_at,omitempty"`
	LastLoginAt       *time.Time     `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	Metadata          map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt         *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DisplayName is the name we show in listings and emails
func (a *Account) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}

// CanRedeemConfirmation reports whether the account still holds an
// unconsumed confirmation token. A confirmed account never goes back to
// unconfirmed, so a consumed token stays consumed.
func (a *Account) CanRedeemConfirmation() bool {
	return !a.EmailConfirmed && a.ConfirmationToken != ""
}

// AddMetadata will append information to a metadata attribute
func (a *Account) AddMetadata(key string, val any) *Account {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = val
	return a
}

// NormalizeEmail lowercases and trims an address. Emails are normalized
// before they hit the store so the unique constraint on the column behaves
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone stores valid numbers in E.164. Input the parser rejects is
// kept as typed; the column is informational, not a login identifier.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	num, err := phonenumbers.Parse(phone, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return phone
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// NewConfirmationToken generates the single-use token material embedded in
// the confirmation link we send at registration.
func NewConfirmationToken() string {
	return uuid.New().String()
}
