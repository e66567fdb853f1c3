package auth0

import (
	"context"
)

// IDTokenClaims holds the profile claims of an Auth0 ID token.
type IDTokenClaims struct {
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	Nickname          string `json:"nickname"`
	PreferredUsername string `json:"preferred_username"`
}

// Validate satisfies validator.CustomClaims.
func (c *IDTokenClaims) Validate(ctx context.Context) error {
	return nil
}

// DisplayName picks the best available username claim
func (c *IDTokenClaims) DisplayName() string {
	if c == nil {
		return ""
	}
	return firstNonEmpty(c.PreferredUsername, c.Nickname, c.Name, c.Email)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
