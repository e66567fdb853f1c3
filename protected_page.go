package authflow

import (
	"context"
	"sync"
)

// PageView is what the protected page shows for a given state
type PageView string

const (
	PageViewLoading   PageView = "loading"
	PageViewNone      PageView = "none"
	PageViewDashboard PageView = "dashboard"
)

// PageRender is the outcome of rendering the protected page
type PageRender struct {
	View     PageView `json:"view"`
	Username string   `json:"username,omitempty"`
	UserID   string   `json:"userId,omitempty"`
}

// ProtectedPage gates the dashboard on the shared session state.
type ProtectedPage struct {
	loginRoute string

	mu      sync.Mutex
	lastKey string
	hasLast bool
}

// NewProtectedPage creates a page that sends anonymous visitors to loginRoute
func NewProtectedPage(loginRoute string) *ProtectedPage {
	if loginRoute == "" {
		loginRoute = DefaultRoutes().Login
	}
	return &ProtectedPage{loginRoute: loginRoute}
}

// Render is a pure function of state.
func (pp *ProtectedPage) Render(state AuthState) PageRender {
	if state.IsLoading {
		return PageRender{View: PageViewLoading}
	}
	if state.User == nil {
		return PageRender{View: PageViewNone}
	}
	return PageRender{
		View:     PageViewDashboard,
		Username: state.User.Username,
		UserID:   state.User.UserID,
	}
}

// Observe runs the post render effect: when the state is settled and no user
// is present it navigates to the login route. Repeated observations of the
// same state navigate once. It reports whether navigation happened.
func (pp *ProtectedPage) Observe(ctx context.Context, state AuthState, nav Navigator) bool {
	key := stateKey(state)

	pp.mu.Lock()
	if pp.hasLast && pp.lastKey == key {
		pp.mu.Unlock()
		return false
	}
	pp.lastKey = key
	pp.hasLast = true
	pp.mu.Unlock()

	if state.IsLoading || state.User != nil {
		return false
	}

	if nav != nil {
		nav.Navigate(ctx, pp.loginRoute)
	}
	return true
}

// Reset forgets the last observed state
func (pp *ProtectedPage) Reset() {
	pp.mu.Lock()
	pp.hasLast = false
	pp.lastKey = ""
	pp.mu.Unlock()
}

func stateKey(state AuthState) string {
	loading := "0"
	if state.IsLoading {
		loading = "1"
	}
	uid := ""
	if state.User != nil {
		uid = state.User.UserID
	}
	return loading + "|" + string(state.Phase) + "|" + uid
}
