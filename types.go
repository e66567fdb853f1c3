package authflow

import (
	"context"
	"fmt"
	"strings"
)

// Logger takes a message followed by key/value pairs
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// IdentityBackend is the capability set the session container relies on.
// Implementations must be safe to call from a single goroutine at a time,
// the Provider serializes access.
type IdentityBackend interface {
	// CheckSessionPresent reports whether a session exists. It never fails,
	// internal errors are reported as false.
	CheckSessionPresent(ctx context.Context) bool
	// FetchCurrentUser returns the session user or a NoActiveSession error.
	FetchCurrentUser(ctx context.Context) (*AuthenticatedUser, error)
	SignIn(ctx context.Context, identifier, secret string) error
	// SignUp enforces the password policy before any I/O. A successful call
	// does not create a session.
	SignUp(ctx context.Context, identifier, secret, email string) error
	// SignOut is idempotent.
	SignOut(ctx context.Context) error
}

// Routes holds the navigation targets used by the flow
type Routes struct {
	Login     string
	Signup    string
	Dashboard string
	Logout    string
	Session   string
}

// DefaultRoutes returns the routes used when none are configured
func DefaultRoutes() Routes {
	return Routes{
		Login:     "/login",
		Signup:    "/signup",
		Dashboard: "/dashboard",
		Logout:    "/logout",
		Session:   "/api/session",
	}
}

func (r Routes) withDefaults() Routes {
	def := DefaultRoutes()
	if r.Login == "" {
		r.Login = def.Login
	}
	if r.Signup == "" {
		r.Signup = def.Signup
	}
	if r.Dashboard == "" {
		r.Dashboard = def.Dashboard
	}
	if r.Logout == "" {
		r.Logout = def.Logout
	}
	if r.Session == "" {
		r.Session = def.Session
	}
	return r
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print(logLine("ERR", msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print(logLine("INF", msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print(logLine("DBG", msg, args...))
}

// logLine renders msg followed by key=value pairs. An odd trailing argument
// is printed on its own.
func logLine(level, msg string, args ...any) string {
	var b strings.Builder
	b.WriteString("[" + level + "] AUTHFLOW ")
	b.WriteString(strings.TrimRight(msg, "\n"))
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	b.WriteString("\n")
	return b.String()
}
