package authflow

import (
	"context"
)

var navigatorCtxKey = &contextKey{"navigator"}
var notifierCtxKey = &contextKey{"notifier"}
var providerCtxKey = &contextKey{"provider"}

type contextKey struct {
	name string
}

// WithNavigator binds a Navigator to the context. Provider operations called
// with this context navigate through it instead of the configured one.
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorCtxKey, nav)
}

// NavigatorFromContext finds the Navigator bound to the context
func NavigatorFromContext(ctx context.Context) (Navigator, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(navigatorCtxKey).(Navigator)
	return raw, ok && raw != nil
}

// WithNotifier binds an extra Notifier to the context. Notifications reach
// both the configured notifier and this one.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierCtxKey, n)
}

// NotifierFromContext finds the Notifier bound to the context
func NotifierFromContext(ctx context.Context) (Notifier, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(notifierCtxKey).(Notifier)
	return raw, ok && raw != nil
}

// WithProvider sets the Provider in the given context
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerCtxKey, p)
}

// ProviderFromContext finds the Provider in the context
func ProviderFromContext(ctx context.Context) (*Provider, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(providerCtxKey).(*Provider)
	return raw, ok && raw != nil
}
