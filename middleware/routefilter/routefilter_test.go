package routefilter

import (
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cfg := configDefault()

	tests := []struct {
		path string
		want RouteClass
	}{
		{"/dashboard", ClassProtected},
		{"/dashboard/settings", ClassProtected},
		{"/login", ClassAuth},
		{"/signup", ClassAuth},
		{"/login/extra", ClassPublic},
		{"/", ClassPublic},
		{"/about", ClassPublic},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Classify(tt.path))
		})
	}
}

func TestConfigDefaultsFillEmptyFields(t *testing.T) {
	cfg := configDefault(Config{AuthRoutes: []string{"/sign-in"}})
	assert.Equal(t, []string{"/dashboard"}, cfg.ProtectedRoutes)
	assert.Equal(t, []string{"/sign-in"}, cfg.AuthRoutes)
	assert.NotNil(t, cfg.Logger)
}

func TestMiddlewareAlwaysForwards(t *testing.T) {
	for _, path := range []string{"/dashboard", "/login", "/public"} {
		t.Run(path, func(t *testing.T) {
			var observed RouteClass
			mw := New(Config{
				OnMatch: func(_ router.Context, _ string, class RouteClass) {
					observed = class
				},
			})

			called := false
			handler := mw(func(ctx router.Context) error {
				called = true
				return nil
			})

			ctx := router.NewMockContext()
			ctx.On("Path").Return(path)

			require.NoError(t, handler(ctx))
			assert.True(t, called)
			assert.Equal(t, configDefault().Classify(path), observed)
			ctx.AssertExpectations(t)
		})
	}
}

func TestMiddlewareSkip(t *testing.T) {
	matched := false
	mw := New(Config{
		Skip:    func(router.Context) bool { return true },
		OnMatch: func(router.Context, string, RouteClass) { matched = true },
	})

	called := false
	handler := mw(func(ctx router.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(router.NewMockContext()))
	assert.True(t, called)
	assert.False(t, matched)
}
