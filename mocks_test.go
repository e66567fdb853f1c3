package authflow

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockBackend implements IdentityBackend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CheckSessionPresent(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockBackend) FetchCurrentUser(ctx context.Context) (*AuthenticatedUser, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*AuthenticatedUser)
	return user, args.Error(1)
}

func (m *MockBackend) SignIn(ctx context.Context, identifier, secret string) error {
	args := m.Called(ctx, identifier, secret)
	return args.Error(0)
}

func (m *MockBackend) SignUp(ctx context.Context, identifier, secret, email string) error {
	args := m.Called(ctx, identifier, secret, email)
	return args.Error(0)
}

func (m *MockBackend) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type activityRecorder struct {
	mu     sync.Mutex
	events []ActivityEvent
	err    error
}

func (r *activityRecorder) Record(_ context.Context, event ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *activityRecorder) types() []ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type stateRecorder struct {
	mu     sync.Mutex
	states []AuthState
}

func (r *stateRecorder) listen(state AuthState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *stateRecorder) sawLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s.IsLoading {
			return true
		}
	}
	return false
}

type nopTestLogger struct{}

func (nopTestLogger) Debug(string, ...any) {}
func (nopTestLogger) Info(string, ...any)  {}
func (nopTestLogger) Error(string, ...any) {}

type loggedLine struct {
	msg  string
	args []any
}

type captureLogger struct {
	debug []loggedLine
	info  []loggedLine
	error []loggedLine
}

func (l *captureLogger) Debug(msg string, args ...any) {
	l.debug = append(l.debug, loggedLine{msg: msg, args: args})
}

func (l *captureLogger) Info(msg string, args ...any) {
	l.info = append(l.info, loggedLine{msg: msg, args: args})
}

func (l *captureLogger) Error(msg string, args ...any) {
	l.error = append(l.error, loggedLine{msg: msg, args: args})
}
