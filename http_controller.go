package authflow

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the login, signup, dashboard, logout and session
// routes on app. Logout only accepts POST so it can carry a CSRF token.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Get(controller.Routes.Login,
			controller.LoginShow,
		).
		SetName("sign-in.get")

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
		).
		SetName("sign-in.post")

	app.Get(controller.Routes.Signup, controller.SignupShow).
		SetName("sign-up.get")
	app.Post(controller.Routes.Signup, controller.SignupCreate).
		SetName("sign-up.post")

	app.Get(controller.Routes.Dashboard, controller.Dashboard).
		SetName("dashboard.get")

	app.Post(controller.Routes.Logout, controller.LogOut).SetName("sign-out.post")

	app.Get(controller.Routes.Session, controller.SessionShow).
		SetName("session.get")
}

type AuthControllerViews struct {
	Login     string
	Signup    string
	Dashboard string
	Loading   string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Provider     *Provider
	Routes       Routes
	Views        *AuthControllerViews
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerProvider sets the session container the handlers drive
func WithControllerProvider(p *Provider) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Provider = p
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerViews(views *AuthControllerViews) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if views != nil {
			c.Views = views
		}
		return c
	}
}

func WithControllerErrorHandler(handler router.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Views: &AuthControllerViews{
			Login:     "login",
			Signup:    "signup",
			Dashboard: "dashboard",
			Loading:   "loading",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Provider == nil {
		panic("Missing Provider in auth controller...")
	}

	c.Routes = c.Provider.Routes()

	return c
}

func (a *AuthController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, MergeTemplateData(ctx, a.Provider, router.ViewContext{
		"errors": nil,
		"record": nil,
	}))
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			validation.Length(1, 200),
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("login validate payload", "error", err)
		return ctx.Render(a.Views.Login, MergeTemplateData(ctx, a.Provider, router.ViewContext{
			"record":     payload,
			"validation": validationErrorMap(err),
		}))
	}

	if a.Debug {
		a.Logger.Debug("login payload", "identifier", payload.Identifier)
	}

	reqCtx, nav, notes := a.requestContext(ctx)
	a.Provider.Login(reqCtx, payload.Identifier, payload.Password)

	if target, ok := nav.Target(); ok {
		return redirect(ctx, notes, target, router.StatusSeeOther)
	}

	return ctx.Render(a.Views.Login, MergeTemplateData(ctx, a.Provider, router.ViewContext{
		"errors": map[string]string{"authentication": "Authentication Error"},
		"record": LoginRequest{Identifier: payload.Identifier},
	}, notes.Drain()...))
}

func (a *AuthController) SignupShow(ctx router.Context) error {
	return ctx.Render(a.Views.Signup, MergeTemplateData(ctx, a.Provider, router.ViewContext{
		"errors": map[string]string{},
		"record": SignupRequest{},
	}))
}

// SignupRequest is the form payload
type SignupRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload. Password strength is checked by the
// provider so the rejection reaches the user as a notification.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) SignupCreate(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("sign up parse payload", "error", err)
		return ctx.Status(fiber.StatusBadRequest).Render(a.Views.Signup, MergeTemplateData(ctx, a.Provider, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		}))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("sign up validate payload", "error", err)
		return ctx.Render(a.Views.Signup, MergeTemplateData(ctx, a.Provider, router.ViewContext{
			"record":     payload,
			"validation": validationErrorMap(err),
		}))
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGN UP ======")
		fmt.Println(print.MaybePrettyJSON(SignupRequest{Username: payload.Username, Email: payload.Email}))
		fmt.Println("===========================")
	}

	reqCtx, nav, notes := a.requestContext(ctx)
	if err := a.Provider.Register(reqCtx, payload.Username, payload.Password, payload.Email); err != nil {
		a.Logger.Info("sign up rejected", "identifier", payload.Username, "error", err)
		return ctx.Status(statusFor(err)).Render(a.Views.Signup, MergeTemplateData(ctx, a.Provider, router.ViewContext{
			"record": SignupRequest{Username: payload.Username, Email: payload.Email},
			"errors": map[string]string{},
		}, notes.Drain()...))
	}

	target, ok := nav.Target()
	if !ok {
		target = a.Routes.Login
	}

	return redirect(ctx, notes, target, router.StatusSeeOther)
}

// Dashboard renders the protected page for the current session state.
func (a *AuthController) Dashboard(ctx router.Context) error {
	page := NewProtectedPage(a.Routes.Login)
	state := a.Provider.State()
	view := page.Render(state)

	reqCtx, nav, notes := a.requestContext(ctx)
	if page.Observe(reqCtx, state, nav) {
		target, _ := nav.Target()
		return redirect(ctx, notes, target, redirectStatus(ctx))
	}

	switch view.View {
	case PageViewLoading:
		return ctx.Render(a.Views.Loading, MergeTemplateData(ctx, a.Provider, router.ViewContext{
			"refresh": a.Routes.Dashboard,
		}, notes.Drain()...))
	case PageViewDashboard:
		return ctx.Render(a.Views.Dashboard, MergeTemplateData(ctx, a.Provider, router.ViewContext{
			"page": view,
		}, notes.Drain()...))
	default:
		return ctx.Redirect(a.Routes.Login, redirectStatus(ctx))
	}
}

func (a *AuthController) LogOut(ctx router.Context) error {
	reqCtx, nav, notes := a.requestContext(ctx)
	a.Provider.Logout(reqCtx)

	target, ok := nav.Target()
	if !ok {
		target = a.Routes.Login
	}
	return redirect(ctx, notes, target, router.StatusSeeOther)
}

// SessionShow returns the current session state as JSON.
func (a *AuthController) SessionShow(ctx router.Context) error {
	state := a.Provider.State()
	if a.Debug {
		a.Logger.Debug("session state", "state", print.MaybePrettyJSON(state))
	}
	return ctx.JSON(router.StatusOK, state)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

func validationErrorMap(err error) map[string]string {
	out := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}
	out["form"] = err.Error()
	return out
}
