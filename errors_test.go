package authflow

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		noSess   bool
		badCreds bool
		weak     bool
		adapter  bool
	}{
		{name: "no active session", err: NoActiveSession(nil), noSess: true},
		{name: "invalid credentials", err: InvalidCredentials("nope"), badCreds: true},
		{name: "weak password", err: WeakPassword(errors.New("too short")), weak: true},
		{name: "adapter failure", err: AdapterFailure(errors.New("boom")), adapter: true},
		{name: "wrapped invalid credentials", err: fmt.Errorf("sign in: %w", InvalidCredentials("")), badCreds: true},
		{name: "plain error", err: errors.New("plain")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.noSess, IsNoActiveSession(tt.err))
			assert.Equal(t, tt.badCreds, IsInvalidCredentials(tt.err))
			assert.Equal(t, tt.weak, IsWeakPassword(tt.err))
			assert.Equal(t, tt.adapter, IsAdapterFailure(tt.err))
		})
	}
}

func TestAdapterFailureKeepsMessageAndKnownCodes(t *testing.T) {
	assert.Nil(t, AdapterFailure(nil))

	err := AdapterFailure(errors.New("User already exists"))
	assert.Equal(t, "User already exists", UserMessage(err, "fallback"))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
	assert.Equal(t, goerrors.CodeInternal, richErr.Code)

	creds := InvalidCredentials("Incorrect username or password.")
	assert.Same(t, error(creds), AdapterFailure(creds))
}

func TestConstructorsDoNotMutateSentinels(t *testing.T) {
	_ = InvalidCredentials("custom message")
	_ = NoActiveSession(errors.New("expired"))

	assert.Equal(t, "invalid credentials", ErrInvalidCredentials.Message)
	assert.Empty(t, ErrNoActiveSession.Metadata)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(nil, "fallback"))
	assert.Equal(t, "plain", UserMessage(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("  "), "fallback"))
	assert.Equal(t, "Incorrect username or password.", UserMessage(InvalidCredentials("Incorrect username or password."), "fallback"))
	assert.Equal(t, "invalid credentials", UserMessage(InvalidCredentials(""), "fallback"))
}
