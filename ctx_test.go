package authflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextBindings(t *testing.T) {
	ctx := context.Background()

	_, ok := NavigatorFromContext(ctx)
	assert.False(t, ok)
	_, ok = NotifierFromContext(ctx)
	assert.False(t, ok)
	_, ok = ProviderFromContext(ctx)
	assert.False(t, ok)

	nav := &NavigationRecorder{}
	notes := &NotificationRecorder{}
	p, _ := newTestProvider(&MockBackend{})

	ctx = WithNavigator(ctx, nav)
	ctx = WithNotifier(ctx, notes)
	ctx = WithProvider(ctx, p)

	gotNav, ok := NavigatorFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, nav, gotNav)

	gotNotifier, ok := NotifierFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, notes, gotNotifier)

	gotProvider, ok := ProviderFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, p, gotProvider)
}

func TestNavigationRecorder(t *testing.T) {
	nav := &NavigationRecorder{}
	assert.False(t, nav.Navigated())

	nav.Navigate(context.Background(), "/dashboard")
	nav.Navigate(context.Background(), "/login")

	target, ok := nav.Target()
	require.True(t, ok)
	assert.Equal(t, "/login", target)
	assert.Equal(t, []string{"/dashboard", "/login"}, nav.History())
}
