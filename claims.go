package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read side of a session token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims carries the registered claim set plus our uid and metadata
// extensions.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string         `json:"uid,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"` // extension payload
}

var _ AuthClaims = (*JWTClaims)(nil)

func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID prefers the uid claim and falls back to the subject, tokens minted
// by older releases only set sub.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// ClaimsMetadata exposes the metadata extension payload.
func (c *JWTClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
