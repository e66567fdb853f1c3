package auth0

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/auth0/go-auth0/authentication"
	authflow "github.com/goliatone/go-auth-flow"
	"github.com/goliatone/go-auth-flow/session"
)

// IDValidator validates ID tokens. TokenValidator implements it.
type IDValidator interface {
	Validate(ctx context.Context, idToken string) (*Identity, error)
}

// Option customizes the backend.
type Option func(*Backend)

// WithLogger overrides the logger.
func WithLogger(logger authflow.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithValidator sets the ID token validator.
func WithValidator(v IDValidator) Option {
	return func(b *Backend) {
		b.validator = v
	}
}

// WithTokenStore shares a token store.
func WithTokenStore(s *session.Store) Option {
	return func(b *Backend) {
		if s != nil {
			b.tokens = s
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		if clock != nil {
			b.now = clock
		}
	}
}

// Backend implements authflow.IdentityBackend with the Auth0 Authentication API.
type Backend struct {
	client    Client
	validator IDValidator
	tokens    *session.Store
	logger    authflow.Logger
	now       func() time.Time
}

var _ authflow.IdentityBackend = (*Backend)(nil)

// New creates a backend from cfg with a JWKS backed ID token validator.
func New(ctx context.Context, cfg Config, opts ...Option) (*Backend, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	validator, err := NewTokenValidator(cfg)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithValidator(validator)}, opts...)
	return NewWithClient(client, opts...), nil
}

// NewWithClient creates a backend on top of an existing client
func NewWithClient(client Client, opts ...Option) *Backend {
	b := &Backend{
		client: client,
		tokens: session.NewStore(),
		logger: nopLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

func (b *Backend) CheckSessionPresent(ctx context.Context) bool {
	tokens, ok := b.tokens.Valid(b.now())
	if !ok {
		return false
	}

	if b.validator == nil || tokens.IDToken == "" {
		return true
	}

	if _, err := b.validator.Validate(ctx, tokens.IDToken); err != nil {
		b.logger.Debug("auth0 id token rejected", "error", err)
		return false
	}

	return true
}

func (b *Backend) FetchCurrentUser(ctx context.Context) (*authflow.AuthenticatedUser, error) {
	tokens, ok := b.tokens.Valid(b.now())
	if !ok {
		return nil, authflow.NoActiveSession(nil)
	}

	info, err := b.client.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, authflow.NoActiveSession(err)
	}

	username := firstNonEmpty(info.PreferredUsername, info.Nickname, info.Name, tokens.Username)
	return &authflow.AuthenticatedUser{
		Username: username,
		UserID:   info.Sub,
		Email:    info.Email,
	}, nil
}

func (b *Backend) SignIn(ctx context.Context, identifier, secret string) error {
	res, err := b.client.LoginWithPassword(ctx, identifier, secret)
	if err != nil {
		return mapError(err)
	}

	if res == nil || res.AccessToken == "" {
		return authflow.AdapterFailure(fmt.Errorf("sign in returned no tokens"))
	}

	b.tokens.Set(session.NewTokenSet(identifier, res.AccessToken, res.IDToken, res.RefreshToken, res.ExpiresIn, b.now()))
	return nil
}

func (b *Backend) SignUp(ctx context.Context, identifier, secret, email string) error {
	if err := authflow.ValidatePasswordStrength(secret); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if email == "" && strings.Contains(identifier, "@") {
		email = identifier
	}

	if err := b.client.Signup(ctx, identifier, email, secret); err != nil {
		return mapError(err)
	}

	b.logger.Info("auth0 sign up accepted", "identifier", identifier, "email", email)
	return nil
}

// SignOut revokes the refresh token when one was issued. The local token set
// is cleared whatever the outcome.
func (b *Backend) SignOut(ctx context.Context) error {
	tokens, ok := b.tokens.Get()
	if !ok {
		return nil
	}
	defer b.tokens.Clear()

	if tokens.RefreshToken == "" {
		return nil
	}

	if err := b.client.RevokeRefreshToken(ctx, tokens.RefreshToken); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *authentication.Error
	if errors.As(err, &apiErr) {
		msg := firstNonEmpty(apiErr.Message, apiErr.Err)
		switch apiErr.Err {
		case "invalid_grant", "access_denied":
			e := authflow.InvalidCredentials(msg)
			e.Source = err
			return e.WithMetadata(map[string]any{
				"provider": "auth0",
				"code":     apiErr.Err,
			})
		}
		return authflow.AdapterFailure(&serviceError{message: msg, cause: err})
	}

	return authflow.AdapterFailure(err)
}

type serviceError struct {
	message string
	cause   error
}

func (e *serviceError) Error() string {
	return e.message
}

func (e *serviceError) Unwrap() error {
	return e.cause
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
