package auth0

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config holds the Auth0 application settings used by the backend.
type Config struct {
	// Domain is the Auth0 tenant domain (e.g., "example.us.auth0.com").
	Domain string

	// ClientID is the application client ID. It is also the audience of
	// the ID tokens the backend validates.
	ClientID string

	// ClientSecret is the application secret (optional for public clients).
	ClientSecret string

	// Connection is the database connection used for sign in and sign up.
	// Default: "Username-Password-Authentication".
	Connection string

	// Audience is the API identifier requested at sign in (optional).
	Audience string

	// Scope requested at sign in.
	// Default: "openid profile email offline_access".
	Scope string

	// RequireUsername sends the identifier as username on sign up. Enable it
	// only for connections with usernames turned on.
	RequireUsername bool

	// Issuer overrides the default issuer URL (optional).
	// Default: "https://{Domain}/".
	Issuer string

	// CacheTTL is how long to cache JWKS keys.
	// Default: 5 minutes.
	CacheTTL time.Duration

	// ContextFunc provides a context for JWKS fetch/validation.
	// Default: context.Background.
	ContextFunc func() context.Context
}

const (
	DefaultConnection = "Username-Password-Authentication"
	DefaultScope      = "openid profile email offline_access"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(domain, clientID string) Config {
	return Config{
		Domain:     domain,
		ClientID:   clientID,
		Connection: DefaultConnection,
		Scope:      DefaultScope,
		CacheTTL:   5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	if c.Connection == "" {
		c.Connection = DefaultConnection
	}
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	return c
}

// Validate checks the required fields
func (c Config) Validate() error {
	if strings.TrimSpace(c.Domain) == "" && strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("auth0: domain is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("auth0: client id is required")
	}
	return nil
}

func (c Config) issuerURL() string {
	if c.Issuer != "" {
		return normalizeIssuer(c.Issuer)
	}

	domain := strings.TrimSpace(c.Domain)
	if domain == "" {
		return ""
	}

	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return normalizeIssuer(domain)
	}

	return fmt.Sprintf("https://%s/", strings.TrimSuffix(domain, "/"))
}

func normalizeIssuer(issuer string) string {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return issuer
	}
	if strings.HasSuffix(issuer, "/") {
		return issuer
	}
	return issuer + "/"
}
