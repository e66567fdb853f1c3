package auth0

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	authflow "github.com/goliatone/go-auth-flow"
)

// Identity is the result of a validated ID token
type Identity struct {
	Subject string
	Claims  *IDTokenClaims
}

// TokenValidator validates Auth0-issued ID tokens using JWKS.
type TokenValidator struct {
	config    Config
	validator *validator.Validator
}

// NewTokenValidator creates a new Auth0 ID token validator.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	cfg = cfg.withDefaults()

	issuer := cfg.issuerURL()
	if issuer == "" {
		return nil, fmt.Errorf("auth0: issuer or domain is required")
	}

	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, fmt.Errorf("auth0: invalid issuer URL: %w", err)
	}
	if issuerURL.Scheme == "" || issuerURL.Host == "" {
		return nil, fmt.Errorf("auth0: invalid issuer URL: %s", issuer)
	}

	provider := jwks.NewCachingProvider(issuerURL, cfg.CacheTTL)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.ClientID},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &IDTokenClaims{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("auth0: failed to create validator: %w", err)
	}

	return &TokenValidator{
		config:    cfg,
		validator: jwtValidator,
	}, nil
}

// Validate checks signature, issuer, audience and expiry of an ID token.
func (v *TokenValidator) Validate(ctx context.Context, tokenString string) (*Identity, error) {
	if ctx == nil {
		ctx = context.Background()
		if v.config.ContextFunc != nil {
			ctx = v.config.ContextFunc()
		}
	}

	token, err := v.validator.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, normalizeValidationError(err)
	}

	validatedClaims, ok := token.(*validator.ValidatedClaims)
	if !ok || validatedClaims == nil {
		return nil, normalizeValidationError(fmt.Errorf("unexpected claims type %T", token))
	}

	claims, _ := validatedClaims.CustomClaims.(*IDTokenClaims)
	return &Identity{
		Subject: validatedClaims.RegisteredClaims.Subject,
		Claims:  claims,
	}, nil
}

func normalizeValidationError(err error) error {
	if err == nil {
		return nil
	}

	reason := "invalid"
	if stderrors.Is(err, jwt.ErrTokenExpired) || strings.Contains(err.Error(), "expired") {
		reason = "expired"
	}

	clone := authflow.NoActiveSession(err)
	return clone.WithMetadata(map[string]any{
		"provider": "auth0",
		"reason":   reason,
		"cause":    err.Error(),
	})
}
