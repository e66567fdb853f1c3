package cognito

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	authflow "github.com/goliatone/go-auth-flow"
)

// TokenVerifier checks an ID token issued by the pool.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*IDTokenClaims, error)
}

// IDTokenClaims are the claims read from a Cognito ID token
type IDTokenClaims struct {
	jwt.RegisteredClaims
	TokenUse string `json:"token_use"`
	Username string `json:"cognito:username"`
	Email    string `json:"email"`
}

// KeyfuncVerifier validates tokens with a jwt.Keyfunc.
type KeyfuncVerifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	clientID string
	jwks     *keyfunc.JWKS
}

// NewKeyfuncVerifier creates a verifier for tokens issued by issuer to clientID
func NewKeyfuncVerifier(kf jwt.Keyfunc, issuer, clientID string) *KeyfuncVerifier {
	return &KeyfuncVerifier{
		keyfunc:  kf,
		issuer:   issuer,
		clientID: clientID,
	}
}

// NewJWKSVerifier fetches the pool JWKS and refreshes it in the background
// until ctx is done or Close is called.
func NewJWKSVerifier(ctx context.Context, cfg Config, logger authflow.Logger) (*KeyfuncVerifier, error) {
	interval := cfg.JWKSRefreshInterval
	if interval == 0 {
		interval = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL(), keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			logger.Error("failed to do a background refresh of the pool JWKS", "error", err)
		},
		RefreshInterval:   interval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cognito: failed to get JWKS: %w", err)
	}

	v := NewKeyfuncVerifier(jwks.Keyfunc, cfg.Issuer(), cfg.ClientID)
	v.jwks = jwks
	return v, nil
}

// Verify implements TokenVerifier.
func (v *KeyfuncVerifier) Verify(_ context.Context, idToken string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, v.keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.clientID),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("cognito: invalid id token: %w", err)
	}

	if claims.TokenUse != "id" {
		return nil, fmt.Errorf("cognito: unexpected token_use %q", claims.TokenUse)
	}

	return claims, nil
}

// Close stops the background JWKS refresh
func (v *KeyfuncVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
