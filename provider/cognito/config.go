package cognito

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the user pool settings. The client is a public app client,
// ClientSecret is only needed when the app client was created with one.
type Config struct {
	// Region is the AWS region of the user pool (e.g., "eu-west-1").
	Region string

	// UserPoolID is the pool identifier (e.g., "eu-west-1_AbCdEf123").
	UserPoolID string

	// ClientID is the app client ID.
	ClientID string

	// ClientSecret enables SECRET_HASH on every call (optional).
	ClientSecret string

	// AccessKeyID and SecretAccessKey set static credentials (optional).
	// Public client calls work with anonymous credentials.
	AccessKeyID     string
	SecretAccessKey string

	// VerifyTokens checks the ID token signature against the pool JWKS
	// before a session is reported present.
	VerifyTokens bool

	// JWKSRefreshInterval is how often keys are refreshed.
	// Default: 1 hour.
	JWKSRefreshInterval time.Duration
}

// Validate checks the required fields
func (c Config) Validate() error {
	if strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("cognito: region is required")
	}
	if strings.TrimSpace(c.UserPoolID) == "" {
		return fmt.Errorf("cognito: user pool id is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("cognito: client id is required")
	}
	return nil
}

// Issuer returns the token issuer of the pool
func (c Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", strings.TrimSpace(c.Region), strings.TrimSpace(c.UserPoolID))
}

// JWKSURL returns the location of the pool signing keys
func (c Config) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}
