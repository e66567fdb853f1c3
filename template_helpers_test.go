package authflow

import (
	"context"
	"testing"

	"github.com/goliatone/go-auth-flow/middleware/csrf"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateHelpers(t *testing.T) {
	helpers := TemplateHelpers()
	require.Contains(t, helpers, "is_authenticated")
	require.Contains(t, helpers, "display_name")

	user := &AuthenticatedUser{Username: "alice", UserID: "u1"}
	var nilUser *AuthenticatedUser

	assert.True(t, isAuthenticated(user))
	assert.False(t, isAuthenticated(nil))
	assert.False(t, isAuthenticated(nilUser))
	assert.False(t, isAuthenticated(AuthState{Phase: PhaseUnauthenticated}))
	assert.True(t, isAuthenticated(AuthState{Phase: PhaseAuthenticated, User: user}))

	assert.Equal(t, "alice", displayName(user))
	assert.Equal(t, "", displayName(nilUser))
	assert.Equal(t, "", displayName("alice"))
}

func TestMergeTemplateData(t *testing.T) {
	p, _ := newTestProvider(&MockBackend{}, WithInteractive(false))
	p.Mount(context.Background())

	ctx := router.NewMockContext()
	ctx.LocalsMock[FlashContextKey] = router.ViewContext{
		"error":         "true",
		"error_message": "Error signing out",
	}
	ctx.LocalsMock[csrf.DefaultContextKey] = "tok"

	view := MergeTemplateData(ctx, p, router.ViewContext{
		"title":  "login",
		"routes": "overridden",
	}, Notification{Level: NotificationSuccess, Message: "hello"})

	assert.Equal(t, "login", view["title"])
	assert.Equal(t, "overridden", view["routes"])
	assert.Nil(t, view[TemplateUserKey])
	assert.Equal(t, p.State(), view["auth_state"])
	assert.Contains(t, view, "is_authenticated")
	assert.Equal(t, "tok", view["csrf_token"])

	toasts, ok := view["toasts"].([]Notification)
	require.True(t, ok)
	require.Len(t, toasts, 2)
	assert.Equal(t, Notification{Level: NotificationError, Message: "Error signing out"}, toasts[0])
	assert.Equal(t, "hello", toasts[1].Message)
}

func TestMergeTemplateDataWithoutRequest(t *testing.T) {
	view := MergeTemplateData(nil, nil, router.ViewContext{"title": "x"})

	assert.Equal(t, "x", view["title"])
	assert.Empty(t, view["toasts"])
	assert.NotContains(t, view, "csrf_token")
	assert.NotContains(t, view, "auth_state")
}
