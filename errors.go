package authflow

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNoActiveSession    = "NO_ACTIVE_SESSION"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeWeakPassword       = "WEAK_PASSWORD"
	TextCodeAdapterFailure     = "ADAPTER_FAILURE"
)

// ErrNoActiveSession is returned when the backend has no current session
var ErrNoActiveSession = goerrors.New("no active session", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoActiveSession).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is returned when sign in is rejected
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrWeakPassword is returned when a secret fails the password policy
var ErrWeakPassword = goerrors.New("password does not meet the strength requirements", goerrors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// NoActiveSession returns a fresh NoActiveSession error. cause may be nil.
func NoActiveSession(cause error) *goerrors.Error {
	e := ErrNoActiveSession.Clone()
	if cause != nil {
		e.Source = cause
		e = e.WithMetadata(map[string]any{"cause": cause.Error()})
	}
	return e
}

// InvalidCredentials returns an InvalidCredentials error. An empty message
// keeps the default one.
func InvalidCredentials(message string) *goerrors.Error {
	e := ErrInvalidCredentials.Clone()
	if msg := strings.TrimSpace(message); msg != "" {
		e.Message = msg
	}
	return e
}

// WeakPassword wraps a policy violation
func WeakPassword(cause error) *goerrors.Error {
	e := ErrWeakPassword.Clone()
	if cause != nil {
		e.Source = cause
		e = e.WithMetadata(map[string]any{"violations": cause.Error()})
	}
	return e
}

// AdapterFailure wraps an unexpected backend error. The backend message is
// kept verbatim so it can be shown to the user. Errors that already carry one
// of the flow text codes are returned unchanged.
func AdapterFailure(err error) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.TextCode {
		case TextCodeNoActiveSession, TextCodeInvalidCredentials, TextCodeWeakPassword, TextCodeAdapterFailure:
			return err
		}
	}

	return goerrors.Wrap(err, goerrors.CategoryOperation, err.Error()).
		WithTextCode(TextCodeAdapterFailure).
		WithCode(goerrors.CodeInternal)
}

// IsNoActiveSession checks the error text code
func IsNoActiveSession(err error) bool {
	return hasTextCode(err, TextCodeNoActiveSession)
}

// IsInvalidCredentials checks the error text code
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsWeakPassword checks the error text code
func IsWeakPassword(err error) bool {
	return hasTextCode(err, TextCodeWeakPassword)
}

// IsAdapterFailure checks the error text code
func IsAdapterFailure(err error) bool {
	return hasTextCode(err, TextCodeAdapterFailure)
}

// UserMessage returns the message to show for err, or fallback when the
// error carries none.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if msg := strings.TrimSpace(richErr.Message); msg != "" {
			return msg
		}
		return fallback
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
