package authflow

import (
	"context"
	"sync"
)

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(ctx context.Context, target string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, target string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, target string) {
	if f == nil {
		return
	}
	f(ctx, target)
}

// NavigationRecorder keeps every navigation request. The HTTP layer binds one
// per request and turns the last target into a redirect.
type NavigationRecorder struct {
	mu      sync.Mutex
	history []string
}

// Navigate implements Navigator.
func (r *NavigationRecorder) Navigate(_ context.Context, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, target)
}

// Target returns the last requested route
func (r *NavigationRecorder) Target() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return "", false
	}
	return r.history[len(r.history)-1], true
}

// Navigated reports whether any navigation was requested
func (r *NavigationRecorder) Navigated() bool {
	_, ok := r.Target()
	return ok
}

// History returns a copy of all requested routes
func (r *NavigationRecorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

type logNavigator struct {
	logger Logger
}

func (n logNavigator) Navigate(_ context.Context, target string) {
	n.logger.Debug("navigate", "target", target)
}
