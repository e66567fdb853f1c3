package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	authflow "github.com/goliatone/go-auth-flow"
	"github.com/goliatone/go-auth-flow/activitymap"
	"github.com/goliatone/go-auth-flow/backend/mock"
	"github.com/goliatone/go-auth-flow/config"
	"github.com/goliatone/go-auth-flow/middleware/csrf"
	"github.com/goliatone/go-auth-flow/middleware/routefilter"
	"github.com/goliatone/go-auth-flow/provider/auth0"
	"github.com/goliatone/go-auth-flow/provider/cognito"
	"github.com/goliatone/go-auth-flow/repository"
	cfs "github.com/goliatone/go-composite-fs"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	bunDB    *bun.DB
	backend  authflow.IdentityBackend
	provider *authflow.Provider
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
	closers  []func()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func main() {

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg))
		fmt.Println("============")
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}
	defer app.Close()

	ctx := context.Background()

	if err := WithBackend(ctx, app); err != nil {
		panic(err)
	}

	WithProvider(ctx, app)

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := serve(app.srv, cfg.Addr, ExitSignals(), shutdownTimeout, app.GetLogger("app")); err != nil {
		panic(err)
	}
}

type server interface {
	Serve(address string) error
	Shutdown(ctx context.Context) error
}

// serve runs srv until it fails or stop delivers a signal. On a signal the
// server is shut down, waiting at most timeout for open requests.
func serve(srv server, addr string, stop <-chan os.Signal, timeout time.Duration, logger authflow.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(addr)
	}()

	select {
	case err := <-errCh:
		if err == nil {
			err = errors.New("server stopped unexpectedly", errors.CategoryInternal)
		}
		logger.Error("server stopped", "addr", addr, "error", err)
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", "error", err)
		return err
	}

	return <-errCh
}

// WithPersistence opens the key-value store used by the mock backend.
func WithPersistence(ctx context.Context, app *App) (mock.KV, error) {
	storeCfg := app.config.Store

	if storeCfg.Driver == config.StoreMemory {
		return repository.NewMemoryKVStore(), nil
	}

	db, err := sql.Open(sqliteshim.ShimName, storeCfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	app.bunDB = bun.NewDB(db, sqlitedialect.New())
	app.onClose(func() {
		if err := app.bunDB.Close(); err != nil {
			app.GetLogger("store").Error("close database", "error", err)
		}
	})

	store := repository.NewKVStore(app.bunDB)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// WithBackend builds the identity backend selected in the configuration.
func WithBackend(ctx context.Context, app *App) error {
	logger := app.GetLogger("backend")

	switch app.config.Backend {
	case config.BackendCognito:
		backend, err := cognito.New(ctx, app.config.CognitoConfig(), cognito.WithLogger(logger))
		if err != nil {
			return err
		}
		app.onClose(backend.Close)
		app.backend = backend

	case config.BackendAuth0:
		backend, err := auth0.New(ctx, app.config.Auth0Config(), auth0.WithLogger(logger))
		if err != nil {
			return err
		}
		app.backend = backend

	default:
		kv, err := WithPersistence(ctx, app)
		if err != nil {
			return err
		}
		app.backend = mock.New(kv,
			mock.WithLogger(logger),
			mock.WithEmailDomain(app.config.Mock.EmailDomain),
			mock.WithStorageKey(app.config.Store.Key),
		)
	}

	logger.Info("identity backend ready", "backend", app.config.Backend)
	return nil
}

// WithProvider creates the shared session container and resolves the
// initial session.
func WithProvider(ctx context.Context, app *App) {
	activityLogger := app.GetLogger("activity")

	app.provider = authflow.NewProvider(app.backend,
		authflow.WithProviderLogger(app.GetLogger("provider")),
		authflow.WithProviderRoutes(app.config.AuthRoutes()),
		authflow.WithInteractive(app.config.Interactive),
		authflow.WithProviderActivitySink(activitymap.Sink(func(record activitymap.Normalized) {
			activityLogger.Info("auth activity", record.Fields()...)
		}, activitymap.WithDefaultChannel(app.config.Backend))),
	)

	app.provider.Mount(ctx)
}

func WithHTTPServer(_ context.Context, app *App) error {
	var templatesFS fs.FS = authflow.GetViewsFS()
	if dir := app.config.ViewsDir; dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("views dir %q: %w", dir, err)
		}
		// disk overrides embedded, so it comes first
		templatesFS = cfs.NewCompositeFS(os.DirFS(dir), templatesFS)
	}

	engine := django.NewFileSystem(http.FS(templatesFS), ".html")
	engine.AddFuncMap(authflow.TemplateHelpers())
	if app.config.Debug {
		engine.Reload(true)
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.config.Debug,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	csrfCfg := csrf.Config{Expiration: app.config.CSRF.Expiration}
	if secret := app.config.CSRF.Secret; secret != "" {
		csrfCfg.SecureKey = []byte(secret)
	}
	srv.Router().Use(csrf.New(csrfCfg))

	routes := app.config.AuthRoutes()
	filterLogger := app.GetLogger("routefilter")
	srv.Router().Use(routefilter.New(routefilter.Config{
		ProtectedRoutes: []string{routes.Dashboard},
		AuthRoutes:      []string{routes.Login, routes.Signup},
		Logger:          filterLogger,
		OnMatch: func(_ router.Context, path string, class routefilter.RouteClass) {
			if class == routefilter.ClassProtected && !app.provider.State().IsAuthenticated() {
				filterLogger.Debug("protected route requested without a session", "path", path)
			}
		},
	}))

	srv.Router().Get("/", func(ctx router.Context) error {
		if app.provider.State().IsAuthenticated() {
			return ctx.Redirect(routes.Dashboard, http.StatusFound)
		}
		return ctx.Redirect(routes.Login, http.StatusFound)
	})

	authflow.RegisterAuthRoutes(srv.Router(),
		authflow.WithControllerProvider(app.provider),
		authflow.WithControllerLogger(app.GetLogger("http")),
		authflow.WithControllerDebug(app.config.Debug),
	)

	app.srv = srv

	return nil
}

func ExitSignals() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
