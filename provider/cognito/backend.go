package cognito

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	authflow "github.com/goliatone/go-auth-flow"
	"github.com/goliatone/go-auth-flow/session"
	"github.com/goliatone/hashid/pkg/hashid"
)

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

// WithVerifier sets the ID token verifier.
func WithVerifier(v TokenVerifier) Option {
	return func(b *Backend) {
		b.verifier = v
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

// Backend implements authflow.IdentityBackend against a Cognito user pool.
type Backend struct {
	api      API
	config   Config
	tokens   *session.Store
	verifier TokenVerifier
	logger   authflow.Logger
	now      func() time.Time
}

var _ authflow.IdentityBackend = (*Backend)(nil)

// New creates a backend with an AWS client built from cfg. When
// cfg.VerifyTokens is set the pool JWKS is fetched eagerly.
func New(ctx context.Context, cfg Config, opts ...Option) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api, err := NewAPI(ctx, cfg)
	if err != nil {
		return nil, err
	}

	b := NewWithAPI(api, cfg, opts...)

	if cfg.VerifyTokens && b.verifier == nil {
		v, err := NewJWKSVerifier(ctx, cfg, b.logger)
		if err != nil {
			return nil, err
		}
		b.verifier = v
	}

	return b, nil
}

// NewWithAPI creates a backend on top of an existing client
func NewWithAPI(api API, cfg Config, opts ...Option) *Backend {
	b := &Backend{
		api:    api,
		config: cfg,
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

	if b.verifier == nil {
		return true
	}

	if _, err := b.verifier.Verify(ctx, tokens.IDToken); err != nil {
		b.logger.Debug("cognito id token rejected", "error", err)
		return false
	}

	return true
}

func (b *Backend) FetchCurrentUser(ctx context.Context) (*authflow.AuthenticatedUser, error) {
	tokens, ok := b.tokens.Valid(b.now())
	if !ok {
		return nil, authflow.NoActiveSession(nil)
	}

	out, err := b.api.GetUser(ctx, &cip.GetUserInput{
		AccessToken: aws.String(tokens.AccessToken),
	})
	if err != nil {
		return nil, authflow.NoActiveSession(err)
	}

	username := aws.ToString(out.Username)
	if username == "" {
		username = tokens.Username
	}

	user := &authflow.AuthenticatedUser{
		Username: username,
		UserID:   attribute(out.UserAttributes, "sub"),
		Email:    attribute(out.UserAttributes, "email"),
	}

	if user.UserID == "" {
		id, err := hashid.NewUUID(username)
		if err != nil {
			return nil, authflow.AdapterFailure(err)
		}
		user.UserID = id.String()
	}

	return user, nil
}

// SignIn accepts a username or an email as identifier.
func (b *Backend) SignIn(ctx context.Context, identifier, secret string) error {
	params := map[string]string{
		"USERNAME": identifier,
		"PASSWORD": secret,
	}
	if b.config.ClientSecret != "" {
		params["SECRET_HASH"] = SecretHash(identifier, b.config.ClientID, b.config.ClientSecret)
	}

	out, err := b.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(b.config.ClientID),
		AuthParameters: params,
	})
	if err != nil {
		return mapError(err)
	}

	if out.ChallengeName != "" {
		return authflow.AdapterFailure(fmt.Errorf("additional sign in step required: %s", out.ChallengeName))
	}

	res := out.AuthenticationResult
	if res == nil || aws.ToString(res.AccessToken) == "" {
		return authflow.AdapterFailure(fmt.Errorf("sign in returned no tokens"))
	}

	b.tokens.Set(session.NewTokenSet(
		identifier,
		aws.ToString(res.AccessToken),
		aws.ToString(res.IdToken),
		aws.ToString(res.RefreshToken),
		int64(res.ExpiresIn),
		b.now(),
	))

	return nil
}

func (b *Backend) SignUp(ctx context.Context, identifier, secret, email string) error {
	if err := authflow.ValidatePasswordStrength(secret); err != nil {
		return err
	}

	input := &cip.SignUpInput{
		ClientId: aws.String(b.config.ClientID),
		Username: aws.String(identifier),
		Password: aws.String(secret),
	}
	if email = strings.TrimSpace(email); email != "" {
		input.UserAttributes = []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		}
	}
	if b.config.ClientSecret != "" {
		input.SecretHash = aws.String(SecretHash(identifier, b.config.ClientID, b.config.ClientSecret))
	}

	out, err := b.api.SignUp(ctx, input)
	if err != nil {
		return mapError(err)
	}

	if !out.UserConfirmed {
		b.logger.Info("cognito sign up pending confirmation", "identifier", identifier, "user_sub", aws.ToString(out.UserSub))
	}

	return nil
}

// SignOut revokes the tokens remotely when present. The local token set is
// cleared whatever the outcome.
func (b *Backend) SignOut(ctx context.Context) error {
	tokens, ok := b.tokens.Get()
	if !ok {
		return nil
	}
	defer b.tokens.Clear()

	if tokens.Expired(b.now()) {
		return nil
	}

	_, err := b.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(tokens.AccessToken),
	})
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Close releases the verifier resources
func (b *Backend) Close() {
	if c, ok := b.verifier.(interface{ Close() }); ok {
		c.Close()
	}
}

func attribute(attrs []types.AttributeType, name string) string {
	for _, a := range attrs {
		if aws.ToString(a.Name) == name {
			return aws.ToString(a.Value)
		}
	}
	return ""
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
