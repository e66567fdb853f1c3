package authflow

import (
	"maps"

	"github.com/goliatone/go-auth-flow/middleware/csrf"
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns the helper functions registered with the view
// engine.
//
// In templates:
//
//	{% if is_authenticated(current_user) %}
//	{{ display_name(current_user) }}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"display_name":     displayName,
	}
}

// MergeTemplateData adds the data every flow view expects: current_user,
// auth_state, routes, the csrf helpers and toasts. Toasts are the flash
// notifications staged by the previous request followed by pending, the
// notifications raised while serving this one.
func MergeTemplateData(ctx router.Context, p *Provider, data router.ViewContext, pending ...Notification) router.ViewContext {
	out := router.ViewContext{}
	maps.Copy(out, TemplateHelpers())

	if p != nil {
		state := p.State()
		out["auth_state"] = state
		out[TemplateUserKey] = state.User
		out["routes"] = p.Routes()
	}

	if ctx != nil {
		maps.Copy(out, csrf.TemplateHelpers(ctx, csrf.DefaultContextKey))
	}

	out["toasts"] = append(flashNotifications(ctx), pending...)

	maps.Copy(out, data)
	return out
}

func isAuthenticated(user any) bool {
	switch u := user.(type) {
	case nil:
		return false
	case *AuthenticatedUser:
		return u != nil
	case AuthenticatedUser:
		return true
	case AuthState:
		return u.IsAuthenticated()
	case *AuthState:
		return u != nil && u.IsAuthenticated()
	default:
		return true
	}
}

func displayName(user any) string {
	switch u := user.(type) {
	case *AuthenticatedUser:
		if u == nil {
			return ""
		}
		return u.Username
	case AuthenticatedUser:
		return u.Username
	default:
		return ""
	}
}
