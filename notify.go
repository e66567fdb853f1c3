package authflow

import (
	"context"
	"sync"
	"time"
)

// NotificationLevel is the toast style
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient user-facing message
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	At      time.Time         `json:"at"`
}

// Notifier delivers user notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	if f == nil {
		return
	}
	f(ctx, n)
}

// NotificationRecorder keeps the notifications raised while serving a single
// caller, e.g. one HTTP request. Bind it with WithNotifier.
type NotificationRecorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *NotificationRecorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns a copy of the recorded notifications in arrival order
func (r *NotificationRecorder) Notifications() []Notification {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Drain returns the recorded notifications and forgets them
func (r *NotificationRecorder) Drain() []Notification {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// Len returns the number of recorded notifications
func (r *NotificationRecorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// logNotifier is the provider default. Callers that show notifications bind
// their own notifier to the call context.
type logNotifier struct {
	logger Logger
}

func (n logNotifier) Notify(_ context.Context, note Notification) {
	n.logger.Debug("notification", "level", string(note.Level), "message", note.Message)
}

type fanoutNotifier []Notifier

func (f fanoutNotifier) Notify(ctx context.Context, n Notification) {
	for _, notifier := range f {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
