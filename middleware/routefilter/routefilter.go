// Package routefilter classifies requests against the protected and
// auth-flow route sets. Requests are always forwarded: the session lives in
// the process-wide authflow.Provider, so nothing on the request can prove
// who is signed in.
package routefilter

import (
	"strings"

	"github.com/goliatone/go-router"
)

// RouteClass is the category a request path falls in
type RouteClass string

const (
	ClassProtected RouteClass = "protected"
	ClassAuth      RouteClass = "auth"
	ClassPublic    RouteClass = "public"
)

type Logger interface {
	Debug(format string, args ...any)
}

// Config defines the configuration for the route filter middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	// ProtectedRoutes are matched by prefix.
	// Default: ["/dashboard"]
	ProtectedRoutes []string

	// AuthRoutes are matched exactly.
	// Default: ["/login", "/signup"]
	AuthRoutes []string

	// OnMatch observes every classification (optional)
	OnMatch func(ctx router.Context, path string, class RouteClass)

	Logger Logger
}

// ConfigDefault is the default config
var ConfigDefault = Config{
	ProtectedRoutes: []string{"/dashboard"},
	AuthRoutes:      []string{"/login", "/signup"},
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		cfg := ConfigDefault
		cfg.Logger = nopLogger{}
		return cfg
	}

	cfg := config[0]
	if len(cfg.ProtectedRoutes) == 0 {
		cfg.ProtectedRoutes = ConfigDefault.ProtectedRoutes
	}
	if len(cfg.AuthRoutes) == 0 {
		cfg.AuthRoutes = ConfigDefault.AuthRoutes
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return cfg
}

// Classify returns the class of path for cfg. Protected routes win over
// auth routes.
func (cfg Config) Classify(path string) RouteClass {
	for _, p := range cfg.ProtectedRoutes {
		if p != "" && strings.HasPrefix(path, p) {
			return ClassProtected
		}
	}
	for _, a := range cfg.AuthRoutes {
		if path == a {
			return ClassAuth
		}
	}
	return ClassPublic
}

// New creates the route filter middleware
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			path := ctx.Path()
			class := cfg.Classify(path)
			cfg.Logger.Debug("route filter", "path", path, "class", class)

			if cfg.OnMatch != nil {
				cfg.OnMatch(ctx, path, class)
			}

			return next(ctx)
		}
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
