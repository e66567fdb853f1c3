// Package config loads the server settings from AUTHFLOW_ prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	authflow "github.com/goliatone/go-auth-flow"
	"github.com/goliatone/go-auth-flow/middleware/csrf"
	"github.com/goliatone/go-auth-flow/provider/auth0"
	"github.com/goliatone/go-auth-flow/provider/cognito"
)

var routePattern = regexp.MustCompile(`^/\S*$`)

// Prefix is prepended to every variable name
const Prefix = "AUTHFLOW_"

const (
	BackendMock    = "mock"
	BackendCognito = "cognito"
	BackendAuth0   = "auth0"

	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains the server configuration.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8978"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	Interactive bool   `env:"INTERACTIVE" envDefault:"true"`
	ViewsDir    string `env:"VIEWS_DIR"`
	Backend     string `env:"BACKEND" envDefault:"mock"`

	Routes  Routes  `envPrefix:"ROUTES_"`
	CSRF    CSRF    `envPrefix:"CSRF_"`
	Store   Store   `envPrefix:"STORE_"`
	Mock    Mock    `envPrefix:"MOCK_"`
	Cognito Cognito `envPrefix:"COGNITO_"`
	Auth0   Auth0   `envPrefix:"AUTH0_"`
}

// Routes overrides the flow paths.
type Routes struct {
	Login     string `env:"LOGIN" envDefault:"/login"`
	Signup    string `env:"SIGNUP" envDefault:"/signup"`
	Dashboard string `env:"DASHBOARD" envDefault:"/dashboard"`
	Logout    string `env:"LOGOUT" envDefault:"/logout"`
	Session   string `env:"SESSION" envDefault:"/api/session"`
}

// CSRF configures the form token middleware. An empty secret makes the
// server generate one at start up.
type CSRF struct {
	Secret     string        `env:"SECRET"`
	Expiration time.Duration `env:"EXPIRATION" envDefault:"1h"`
}

// Store selects the persistence used by the mock backend.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN" envDefault:"file:authflow.db?cache=shared"`
	Key    string `env:"KEY" envDefault:"auth_user"`
}

// Mock contains the mock backend parameters.
type Mock struct {
	EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"example.com"`
}

// Cognito contains the user pool parameters.
type Cognito struct {
	Region          string        `env:"REGION"`
	UserPoolID      string        `env:"USER_POOL_ID"`
	ClientID        string        `env:"CLIENT_ID"`
	ClientSecret    string        `env:"CLIENT_SECRET"`
	AccessKeyID     string        `env:"ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"SECRET_ACCESS_KEY"`
	VerifyTokens    bool          `env:"VERIFY_TOKENS" envDefault:"true"`
	JWKSRefresh     time.Duration `env:"JWKS_REFRESH" envDefault:"1h"`
}

// Auth0 contains the tenant parameters.
type Auth0 struct {
	Domain          string        `env:"DOMAIN"`
	ClientID        string        `env:"CLIENT_ID"`
	ClientSecret    string        `env:"CLIENT_SECRET"`
	Connection      string        `env:"CONNECTION" envDefault:"Username-Password-Authentication"`
	Audience        string        `env:"AUDIENCE"`
	RequireUsername bool          `env:"REQUIRE_USERNAME" envDefault:"false"`
	CacheTTL        time.Duration `env:"JWKS_CACHE_TTL" envDefault:"5m"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	return LoadWithEnvironment(nil)
}

// LoadWithEnvironment parses the given variables instead of the process
// environment when environment is not nil.
func LoadWithEnvironment(environment map[string]string) (*Config, error) {
	cfg := Config{}
	opts := env.Options{Prefix: Prefix}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the selector values and the fields the selected backend
// needs.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMock, BackendCognito, BackendAuth0)),
	)
	if err != nil {
		return err
	}

	if err := c.Routes.Validate(); err != nil {
		return fmt.Errorf("routes: %w", err)
	}

	if err := c.CSRF.Validate(); err != nil {
		return fmt.Errorf("csrf: %w", err)
	}

	switch c.Backend {
	case BackendMock:
		if err := c.Store.Validate(); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock: %w", err)
		}
	case BackendCognito:
		if err := c.Cognito.Validate(); err != nil {
			return fmt.Errorf("cognito: %w", err)
		}
	case BackendAuth0:
		if err := c.Auth0.Validate(); err != nil {
			return fmt.Errorf("auth0: %w", err)
		}
	}

	return nil
}

func (r Routes) Validate() error {
	path := validation.Match(routePattern).Error("must be an absolute path")
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required, path),
		validation.Field(&r.Signup, validation.Required, path),
		validation.Field(&r.Dashboard, validation.Required, path),
		validation.Field(&r.Logout, validation.Required, path),
		validation.Field(&r.Session, validation.Required, path),
	)
}

func (c CSRF) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Secret, validation.Length(csrf.MinSecureKeyLength, 0)),
		validation.Field(&c.Expiration, validation.Min(time.Minute)),
	)
}

func (s Store) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(StoreSQLite, StoreMemory)),
		validation.Field(&s.Key, validation.Required),
		validation.Field(&s.DSN, validation.By(func(any) error {
			if s.Driver == StoreSQLite && s.DSN == "" {
				return errors.New("cannot be blank")
			}
			return nil
		})),
	)
}

func (m Mock) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.EmailDomain, validation.Required, is.DNSName),
	)
}

func (c Cognito) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Region, validation.Required),
		validation.Field(&c.UserPoolID, validation.Required),
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.SecretAccessKey, validation.By(pairedWith(c.AccessKeyID))),
	)
}

func (a Auth0) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Domain, validation.Required),
		validation.Field(&a.ClientID, validation.Required),
		validation.Field(&a.Connection, validation.Required),
	)
}

// AuthRoutes converts the route settings for the session container.
func (c Config) AuthRoutes() authflow.Routes {
	return authflow.Routes{
		Login:     c.Routes.Login,
		Signup:    c.Routes.Signup,
		Dashboard: c.Routes.Dashboard,
		Logout:    c.Routes.Logout,
		Session:   c.Routes.Session,
	}
}

// CognitoConfig converts the settings for the Cognito backend.
func (c Config) CognitoConfig() cognito.Config {
	return cognito.Config{
		Region:              c.Cognito.Region,
		UserPoolID:          c.Cognito.UserPoolID,
		ClientID:            c.Cognito.ClientID,
		ClientSecret:        c.Cognito.ClientSecret,
		AccessKeyID:         c.Cognito.AccessKeyID,
		SecretAccessKey:     c.Cognito.SecretAccessKey,
		VerifyTokens:        c.Cognito.VerifyTokens,
		JWKSRefreshInterval: c.Cognito.JWKSRefresh,
	}
}

// Auth0Config converts the settings for the Auth0 backend.
func (c Config) Auth0Config() auth0.Config {
	cfg := auth0.DefaultConfig(c.Auth0.Domain, c.Auth0.ClientID)
	cfg.ClientSecret = c.Auth0.ClientSecret
	cfg.Connection = c.Auth0.Connection
	cfg.Audience = c.Auth0.Audience
	cfg.RequireUsername = c.Auth0.RequireUsername
	if c.Auth0.CacheTTL > 0 {
		cfg.CacheTTL = c.Auth0.CacheTTL
	}
	return cfg
}

func pairedWith(other string) func(any) error {
	return func(value any) error {
		v, _ := value.(string)
		if (v == "") != (other == "") {
			return errors.New("access key id and secret access key must be set together")
		}
		return nil
	}
}
