package authflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Messages holds the user-facing notification texts
type Messages struct {
	LoginSuccess    string
	LoginFailed     string
	RegisterSuccess string // the first %s is replaced with the email, or the identifier when no email was given
	RegisterFailed  string
	LogoutSuccess   string
	LogoutFailed    string
}

// DefaultMessages returns the stock notification texts
func DefaultMessages() Messages {
	return Messages{
		LoginSuccess:    "Signed in successfully",
		LoginFailed:     "Could not sign in. Check your credentials.",
		RegisterSuccess: "Registration successful for %s",
		RegisterFailed:  "Could not complete the registration.",
		LogoutSuccess:   "Signed out",
		LogoutFailed:    "Error signing out",
	}
}

// ProviderOption customizes Provider construction.
type ProviderOption func(*Provider)

// WithProviderLogger overrides the logger.
func WithProviderLogger(logger Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProviderNotifier replaces the default notifier, which only logs.
// A notifier bound to the call context with WithNotifier receives every
// notification as well.
func WithProviderNotifier(n Notifier) ProviderOption {
	return func(p *Provider) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithProviderNavigator sets the navigator used when the call context has none.
func WithProviderNavigator(nav Navigator) ProviderOption {
	return func(p *Provider) {
		if nav != nil {
			p.navigator = nav
		}
	}
}

// WithProviderActivitySink sets the ActivitySink used to publish session events.
func WithProviderActivitySink(sink ActivitySink) ProviderOption {
	return func(p *Provider) {
		p.activitySink = normalizeActivitySink(sink)
	}
}

// WithProviderRoutes overrides the navigation targets.
func WithProviderRoutes(routes Routes) ProviderOption {
	return func(p *Provider) {
		p.routes = routes.withDefaults()
	}
}

// WithProviderMessages overrides the notification texts. Empty fields keep
// their default.
func WithProviderMessages(m Messages) ProviderOption {
	return func(p *Provider) {
		def := DefaultMessages()
		p.messages = Messages{
			LoginSuccess:    firstNonEmpty(m.LoginSuccess, def.LoginSuccess),
			LoginFailed:     firstNonEmpty(m.LoginFailed, def.LoginFailed),
			RegisterSuccess: firstNonEmpty(m.RegisterSuccess, def.RegisterSuccess),
			RegisterFailed:  firstNonEmpty(m.RegisterFailed, def.RegisterFailed),
			LogoutSuccess:   firstNonEmpty(m.LogoutSuccess, def.LogoutSuccess),
			LogoutFailed:    firstNonEmpty(m.LogoutFailed, def.LogoutFailed),
		}
	}
}

// WithInteractive controls whether Mount asks the backend for a session. A non
// interactive provider starts unauthenticated.
func WithInteractive(interactive bool) ProviderOption {
	return func(p *Provider) {
		p.interactive = interactive
	}
}

// WithUserIDGenerator overrides the id given to session users that have
// none: the fallback user built after a failed profile lookup, or a backend
// profile with an empty id.
func WithUserIDGenerator(gen func() string) ProviderOption {
	return func(p *Provider) {
		if gen != nil {
			p.newUserID = gen
		}
	}
}

// WithProviderClock injects a custom clock (useful for tests).
func WithProviderClock(clock func() time.Time) ProviderOption {
	return func(p *Provider) {
		if clock != nil {
			p.now = clock
		}
	}
}

// Provider is the session container shared by every consumer of the flow.
type Provider struct {
	backend      IdentityBackend
	logger       Logger
	notifier     Notifier
	navigator    Navigator
	activitySink ActivitySink
	routes       Routes
	messages     Messages
	interactive  bool
	newUserID    func() string
	now          func() time.Time
	machine      sessionMachine

	// opMu serializes Mount, Login, Register and Logout
	opMu sync.Mutex

	mu           sync.RWMutex
	state        AuthState
	listeners    map[int]func(AuthState)
	nextListener int

	mountOnce sync.Once
}

// NewProvider creates the session container for backend.
func NewProvider(backend IdentityBackend, opts ...ProviderOption) *Provider {
	if backend == nil {
		panic("Missing IdentityBackend in auth provider...")
	}

	p := &Provider{
		backend:      backend,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		routes:       DefaultRoutes(),
		messages:     DefaultMessages(),
		interactive:  true,
		newUserID:    uuid.NewString,
		now:          time.Now,
		machine:      newSessionMachine(),
		state:        initialState(),
		listeners:    map[int]func(AuthState){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.navigator == nil {
		p.navigator = logNavigator{logger: p.logger}
	}

	if p.notifier == nil {
		p.notifier = logNotifier{logger: p.logger}
	}

	return p
}

// State returns a snapshot of the shared session
func (p *Provider) State() AuthState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.clone()
}

// Routes returns the navigation targets
func (p *Provider) Routes() Routes {
	return p.routes
}

// Subscribe registers a listener called with a snapshot after every state
// change. The returned function removes it.
func (p *Provider) Subscribe(listener func(AuthState)) func() {
	if listener == nil {
		return func() {}
	}

	p.mu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = listener
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Mount resolves the initial session. Only the first call has any effect.
func (p *Provider) Mount(ctx context.Context) {
	p.mountOnce.Do(func() {
		p.opMu.Lock()
		defer p.opMu.Unlock()
		p.mount(ctx)
	})
}

func (p *Provider) mount(ctx context.Context) {
	if p.State().Phase != PhaseInitializing {
		p.logger.Debug("mount skipped, session already resolved")
		return
	}

	if !p.interactive {
		p.setUnauthenticated(ctx)
		return
	}

	if !p.backend.CheckSessionPresent(ctx) {
		p.setUnauthenticated(ctx)
		return
	}

	user, err := p.backend.FetchCurrentUser(ctx)
	if err != nil || user == nil {
		p.logger.Debug("session present but user lookup failed", "error", err)
		p.setUnauthenticated(ctx)
		return
	}

	user = p.withUserID(user)
	p.setAuthenticated(ctx, user)
	p.setBusy(ctx, false)
	p.record(ctx, ActivityEvent{
		EventType:  ActivityEventSessionRestored,
		Identifier: user.Username,
		UserID:     user.UserID,
		FromPhase:  PhaseInitializing,
		ToPhase:    PhaseAuthenticated,
	})
}

// Login signs in and updates the shared session. Failures are reported
// through the notifier only.
func (p *Provider) Login(ctx context.Context, identifier, secret string) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.setBusy(ctx, true)
	defer p.setBusy(ctx, false)

	from := p.State().Phase

	if err := p.backend.SignIn(ctx, identifier, secret); err != nil {
		p.logger.Error("login failed", "identifier", identifier, "error", err)
		p.clearUser(ctx)
		p.notify(ctx, NotificationError, UserMessage(err, p.messages.LoginFailed))
		p.record(ctx, ActivityEvent{
			EventType:  ActivityEventLoginFailure,
			Identifier: identifier,
			FromPhase:  from,
			ToPhase:    PhaseUnauthenticated,
			Metadata:   map[string]any{"error": err.Error()},
		})
		return
	}

	user, err := p.backend.FetchCurrentUser(ctx)
	if err != nil || user == nil {
		p.logger.Info("user lookup after login failed, using local identity", "identifier", identifier, "error", err)
		user = &AuthenticatedUser{Username: identifier}
	}
	user = p.withUserID(user)

	p.setAuthenticated(ctx, user)
	p.notify(ctx, NotificationSuccess, p.messages.LoginSuccess)
	p.record(ctx, ActivityEvent{
		EventType:  ActivityEventLoginSuccess,
		Identifier: identifier,
		UserID:     user.UserID,
		FromPhase:  from,
		ToPhase:    PhaseAuthenticated,
	})
	p.navigate(ctx, p.routes.Dashboard)
}

// Register creates an account. It does not authenticate. Errors are
// returned after the user was notified.
func (p *Provider) Register(ctx context.Context, identifier, secret, email string) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.setBusy(ctx, true)
	defer p.setBusy(ctx, false)

	err := ValidatePasswordStrength(secret)
	if err == nil {
		err = p.backend.SignUp(ctx, identifier, secret, email)
	}

	if err != nil {
		p.logger.Error("register failed", "identifier", identifier, "error", err)
		p.notify(ctx, NotificationError, UserMessage(err, p.messages.RegisterFailed))
		p.record(ctx, ActivityEvent{
			EventType:  ActivityEventRegisterFailure,
			Identifier: identifier,
			Metadata:   map[string]any{"error": err.Error(), "email": email},
		})
		return err
	}

	p.notify(ctx, NotificationSuccess, fillMessage(p.messages.RegisterSuccess, firstNonEmpty(email, identifier)))
	p.record(ctx, ActivityEvent{
		EventType:  ActivityEventRegisterSuccess,
		Identifier: identifier,
		Metadata:   map[string]any{"email": email},
	})
	p.navigate(ctx, p.routes.Login)
	return nil
}

// Logout signs out and always clears the shared session, even when the
// backend call fails.
func (p *Provider) Logout(ctx context.Context) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.setBusy(ctx, true)
	defer p.setBusy(ctx, false)

	before := p.State()

	err := p.backend.SignOut(ctx)
	p.clearUser(ctx)

	event := ActivityEvent{
		EventType: ActivityEventLogout,
		FromPhase: before.Phase,
		ToPhase:   PhaseUnauthenticated,
	}
	if before.User != nil {
		event.Identifier = before.User.Username
		event.UserID = before.User.UserID
	}

	if err != nil {
		p.logger.Error("logout failed", "error", err)
		event.Metadata = map[string]any{"error": err.Error()}
		p.notify(ctx, NotificationError, p.messages.LogoutFailed)
	} else {
		p.notify(ctx, NotificationSuccess, p.messages.LogoutSuccess)
	}

	p.record(ctx, event)
	p.navigate(ctx, p.routes.Login)
}

func (p *Provider) withUserID(user *AuthenticatedUser) *AuthenticatedUser {
	if user.UserID != "" {
		return user
	}
	filled := user.Clone()
	filled.UserID = p.newUserID()
	return filled
}

func (p *Provider) setBusy(ctx context.Context, busy bool) {
	p.update(ctx, func(s *AuthState) {
		s.IsLoading = busy
	})
}

func (p *Provider) setAuthenticated(ctx context.Context, user *AuthenticatedUser) {
	p.update(ctx, func(s *AuthState) {
		s.User = user.Clone()
		s.Phase = PhaseAuthenticated
	})
}

func (p *Provider) setUnauthenticated(ctx context.Context) {
	p.update(ctx, func(s *AuthState) {
		s.User = nil
		s.Phase = PhaseUnauthenticated
		s.IsLoading = false
	})
}

func (p *Provider) clearUser(ctx context.Context) {
	p.update(ctx, func(s *AuthState) {
		s.User = nil
		s.Phase = PhaseUnauthenticated
	})
}

func (p *Provider) update(_ context.Context, mutate func(*AuthState)) {
	p.mu.Lock()
	next := p.state.clone()
	mutate(&next)

	if err := p.machine.validate(p.state.Phase, next.Phase); err != nil {
		p.mu.Unlock()
		p.logger.Error("session transition rejected", "error", err)
		return
	}

	p.state = next
	snapshot := next.clone()
	listeners := make([]func(AuthState), 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.clone())
	}
}

func (p *Provider) notify(ctx context.Context, level NotificationLevel, message string) {
	n := Notification{
		Level:   level,
		Message: message,
		At:      p.now(),
	}

	targets := fanoutNotifier{p.notifier}
	if extra, ok := NotifierFromContext(ctx); ok {
		targets = append(targets, extra)
	}
	targets.Notify(ctx, n)
}

func (p *Provider) navigate(ctx context.Context, target string) {
	if nav, ok := NavigatorFromContext(ctx); ok {
		nav.Navigate(ctx, target)
		return
	}
	p.navigator.Navigate(ctx, target)
}

func (p *Provider) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}
	if err := p.activitySink.Record(ctx, event); err != nil {
		p.logger.Error("activity sink failed", "event", event.EventType, "error", err)
	}
}

// fillMessage replaces the first %s in message with value. Messages without
// a placeholder are returned as is.
func fillMessage(message, value string) string {
	return strings.Replace(message, "%s", value, 1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
