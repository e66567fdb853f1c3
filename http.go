package authflow

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// FlashContextKey is the locals key the flash middleware stores the previous
// request's flash data under.
var FlashContextKey = "flash"

const (
	flashErrorKey   = "error_message"
	flashSuccessKey = "success_message"
)

// requestContext binds the provider, a navigation recorder and a notification
// recorder to the request context. Navigation becomes an HTTP redirect and the
// recorded notifications belong to this request only.
func (a *AuthController) requestContext(ctx router.Context) (context.Context, *NavigationRecorder, *NotificationRecorder) {
	nav := &NavigationRecorder{}
	notes := &NotificationRecorder{}
	c := ctx.Context()
	if c == nil {
		c = context.Background()
	}
	c = WithProvider(c, a.Provider)
	c = WithNavigator(c, nav)
	c = WithNotifier(c, notes)
	return c, nav, notes
}

// redirect stages the request notifications in the flash cookie so the page
// the client lands on renders them.
func redirect(ctx router.Context, notes *NotificationRecorder, target string, status int) error {
	stageFlash(ctx, notes.Drain())
	return ctx.Redirect(target, status)
}

func stageFlash(ctx router.Context, notes []Notification) {
	for _, note := range notes {
		if note.Message == "" {
			continue
		}
		if note.Level == NotificationError {
			flash.WithError(ctx, router.ViewContext{flashErrorKey: note.Message})
			continue
		}
		flash.WithSuccess(ctx, router.ViewContext{flashSuccessKey: note.Message})
	}
}

// flashNotifications reads the notifications staged by the previous request
func flashNotifications(ctx router.Context) []Notification {
	if ctx == nil {
		return nil
	}
	data, ok := ctx.Locals(FlashContextKey).(router.ViewContext)
	if !ok || len(data) == 0 {
		return nil
	}

	var out []Notification
	if msg, ok := data[flashSuccessKey].(string); ok && msg != "" {
		out = append(out, Notification{Level: NotificationSuccess, Message: msg})
	}
	if msg, ok := data[flashErrorKey].(string); ok && msg != "" {
		out = append(out, Notification{Level: NotificationError, Message: msg})
	}
	return out
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// statusFor maps a flow error to the response status
func statusFor(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return http.StatusInternalServerError
}

func defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	defLogger{}.Info(
		"request error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status <= 0 {
		status = http.StatusInternalServerError
	}

	return c.Status(status).Render("errors/500", router.ViewContext{
		"error":   richErr,
		"message": richErr.Message,
	})
}
