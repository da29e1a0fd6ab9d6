package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	accounts "github.com/goliatone/go-accounts"
)

// Config is loaded from the environment. It satisfies accounts.Config so
// the same struct drives both the token service and the HTTP middleware.
type Config struct {
	Address string `env:"ACCOUNTS_ADDRESS" envDefault:":8080"`
	BaseURL string `env:"ACCOUNTS_BASE_URL" envDefault:"http://localhost:8080"`
	Debug   bool   `env:"ACCOUNTS_DEBUG" envDefault:"false"`

	DBDriver string `env:"ACCOUNTS_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"ACCOUNTS_DB_DSN" envDefault:"file:accounts.db?cache=shared&mode=rwc"`

	SigningKey            string   `env:"ACCOUNTS_SIGNING_KEY,required"`
	SigningMethod         string   `env:"ACCOUNTS_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey            string   `env:"ACCOUNTS_CONTEXT_KEY" envDefault:"app_session"`
	TokenExpiration       int      `env:"ACCOUNTS_TOKEN_EXPIRATION_HOURS" envDefault:"24"`
	ExtendedTokenDuration int      `env:"ACCOUNTS_EXTENDED_TOKEN_HOURS" envDefault:"168"`
	Issuer                string   `env:"ACCOUNTS_TOKEN_ISSUER" envDefault:"accounts"`
	Audience              []string `env:"ACCOUNTS_TOKEN_AUDIENCE" envSeparator:","`
	RejectedRouteKey      string   `env:"ACCOUNTS_REJECTED_ROUTE_KEY" envDefault:"rejected_route"`
	RejectedRouteDefault  string   `env:"ACCOUNTS_REJECTED_ROUTE_DEFAULT" envDefault:"/"`

	SMTPHost     string        `env:"ACCOUNTS_SMTP_HOST"`
	SMTPPort     int           `env:"ACCOUNTS_SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"ACCOUNTS_SMTP_USERNAME"`
	SMTPPassword string        `env:"ACCOUNTS_SMTP_PASSWORD"`
	SMTPFrom     string        `env:"ACCOUNTS_SMTP_FROM"`
	SMTPFromName string        `env:"ACCOUNTS_SMTP_FROM_NAME" envDefault:"Accounts"`
	SMTPTimeout  time.Duration `env:"ACCOUNTS_SMTP_TIMEOUT" envDefault:"30s"`
}

var _ accounts.Config = (*Config)(nil)

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) GetSigningKey() string    { return c.SigningKey }
func (c *Config) GetSigningMethod() string { return c.SigningMethod }
func (c *Config) GetContextKey() string    { return c.ContextKey }

func (c *Config) GetTokenExpiration() int       { return c.TokenExpiration }
func (c *Config) GetExtendedTokenDuration() int { return c.ExtendedTokenDuration }

func (c *Config) GetTokenLookup() string {
	return "cookie:" + c.ContextKey
}

func (c *Config) GetAuthScheme() string { return "Bearer" }
func (c *Config) GetIssuer() string     { return c.Issuer }

func (c *Config) GetAudience() []string { return c.Audience }

func (c *Config) GetRejectedRouteKey() string     { return c.RejectedRouteKey }
func (c *Config) GetRejectedRouteDefault() string { return c.RejectedRouteDefault }

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func (c *Config) SMTP() accounts.SMTPConfig {
	return accounts.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
		FromName: c.SMTPFromName,
		Timeout:  c.SMTPTimeout,
	}
}
