// Package mock implements a local identity backend that keeps a fake user in
// a key-value store. Any identifier is accepted with a secret of at least
// eight characters.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	authflow "github.com/goliatone/go-auth-flow"
)

const (
	// StorageKey is the key holding the JSON encoded user
	StorageKey = "auth_user"
	// DefaultEmailDomain is used to synthesize user emails
	DefaultEmailDomain = "example.com"
)

// KV is the storage the backend persists the session in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Option customizes the backend.
type Option func(*Backend)

// WithEmailDomain sets the domain used for synthesized emails.
func WithEmailDomain(domain string) Option {
	return func(b *Backend) {
		if d := strings.TrimSpace(domain); d != "" {
			b.emailDomain = strings.TrimPrefix(d, "@")
		}
	}
}

// WithStorageKey overrides the key holding the session record.
func WithStorageKey(key string) Option {
	return func(b *Backend) {
		if k := strings.TrimSpace(key); k != "" {
			b.key = k
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

// WithLogger overrides the logger.
func WithLogger(logger authflow.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Backend implements authflow.IdentityBackend on top of a KV store.
type Backend struct {
	kv          KV
	key         string
	emailDomain string
	now         func() time.Time
	logger      authflow.Logger
}

var _ authflow.IdentityBackend = (*Backend)(nil)

// New creates a mock backend persisting to kv
func New(kv KV, opts ...Option) *Backend {
	if kv == nil {
		panic("Missing KV store in mock backend...")
	}

	b := &Backend{
		kv:          kv,
		key:         StorageKey,
		emailDomain: DefaultEmailDomain,
		now:         time.Now,
		logger:      nopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

func (b *Backend) CheckSessionPresent(ctx context.Context) bool {
	_, ok, err := b.kv.Get(ctx, b.key)
	if err != nil {
		b.logger.Error("mock session check failed", "error", err)
		return false
	}
	return ok
}

func (b *Backend) FetchCurrentUser(ctx context.Context) (*authflow.AuthenticatedUser, error) {
	raw, ok, err := b.kv.Get(ctx, b.key)
	if err != nil {
		return nil, authflow.NoActiveSession(err)
	}
	if !ok {
		return nil, authflow.NoActiveSession(nil)
	}

	user := &authflow.AuthenticatedUser{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		b.logger.Error("mock session record is corrupt", "error", err)
		return nil, authflow.NoActiveSession(err)
	}

	return user, nil
}

func (b *Backend) SignIn(ctx context.Context, identifier, secret string) error {
	if utf8.RuneCountInString(secret) < authflow.MinPasswordLength {
		return authflow.InvalidCredentials("")
	}

	user := authflow.AuthenticatedUser{
		Username: identifier,
		UserID:   fmt.Sprintf("user-%d", b.now().UnixMilli()),
		Email:    fmt.Sprintf("%s@%s", identifier, b.emailDomain),
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return authflow.AdapterFailure(err)
	}

	if err := b.kv.Set(ctx, b.key, string(raw)); err != nil {
		return authflow.AdapterFailure(err)
	}

	b.logger.Debug("mock sign in", "username", user.Username, "user_id", user.UserID)
	return nil
}

// SignUp only checks the password policy. Nothing is stored.
func (b *Backend) SignUp(ctx context.Context, identifier, secret, email string) error {
	if err := authflow.ValidatePasswordStrength(secret); err != nil {
		return err
	}
	b.logger.Info("mock sign up accepted", "identifier", identifier, "email", email)
	return nil
}

func (b *Backend) SignOut(ctx context.Context) error {
	if err := b.kv.Delete(ctx, b.key); err != nil {
		return authflow.AdapterFailure(err)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
