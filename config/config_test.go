package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8978", cfg.Addr)
	assert.True(t, cfg.Interactive)
	assert.False(t, cfg.Debug)
	assert.Equal(t, BackendMock, cfg.Backend)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "auth_user", cfg.Store.Key)
	assert.Equal(t, "example.com", cfg.Mock.EmailDomain)

	routes := cfg.AuthRoutes()
	assert.Equal(t, "/login", routes.Login)
	assert.Equal(t, "/signup", routes.Signup)
	assert.Equal(t, "/dashboard", routes.Dashboard)
	assert.Equal(t, "/logout", routes.Logout)
	assert.Equal(t, "/api/session", routes.Session)
}

func TestLoadFromProcessEnvironment(t *testing.T) {
	t.Setenv("AUTHFLOW_ADDR", ":9000")
	t.Setenv("AUTHFLOW_DEBUG", "true")
	t.Setenv("AUTHFLOW_STORE_DRIVER", "memory")
	t.Setenv("AUTHFLOW_MOCK_EMAIL_DOMAIN", "corp.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "corp.test", cfg.Mock.EmailDomain)
}

func TestValidateBackendSelector(t *testing.T) {
	_, err := LoadWithEnvironment(map[string]string{"AUTHFLOW_BACKEND": "ldap"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backend")
}

func TestValidateStoreDriver(t *testing.T) {
	_, err := LoadWithEnvironment(map[string]string{"AUTHFLOW_STORE_DRIVER": "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store")
}

func TestValidateRoutes(t *testing.T) {
	_, err := LoadWithEnvironment(map[string]string{"AUTHFLOW_ROUTES_LOGIN": "login"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routes")
}

func TestCognitoRequiresPoolSettings(t *testing.T) {
	_, err := LoadWithEnvironment(map[string]string{"AUTHFLOW_BACKEND": "cognito"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cognito")

	cfg, err := LoadWithEnvironment(map[string]string{
		"AUTHFLOW_BACKEND":              "cognito",
		"AUTHFLOW_COGNITO_REGION":       "eu-west-1",
		"AUTHFLOW_COGNITO_USER_POOL_ID": "eu-west-1_AbCdEf123",
		"AUTHFLOW_COGNITO_CLIENT_ID":    "client",
		"AUTHFLOW_COGNITO_JWKS_REFRESH": "30m",
	})
	require.NoError(t, err)

	cc := cfg.CognitoConfig()
	require.NoError(t, cc.Validate())
	assert.True(t, cc.VerifyTokens)
	assert.Equal(t, 30*time.Minute, cc.JWKSRefreshInterval)
	assert.Equal(t, "https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_AbCdEf123", cc.Issuer())
}

func TestCognitoStaticCredentialsArePaired(t *testing.T) {
	_, err := LoadWithEnvironment(map[string]string{
		"AUTHFLOW_BACKEND":               "cognito",
		"AUTHFLOW_COGNITO_REGION":        "eu-west-1",
		"AUTHFLOW_COGNITO_USER_POOL_ID":  "pool",
		"AUTHFLOW_COGNITO_CLIENT_ID":     "client",
		"AUTHFLOW_COGNITO_ACCESS_KEY_ID": "AKIA",
	})
	require.Error(t, err)
}

func TestAuth0Settings(t *testing.T) {
	_, err := LoadWithEnvironment(map[string]string{"AUTHFLOW_BACKEND": "auth0"})
	require.Error(t, err)

	cfg, err := LoadWithEnvironment(map[string]string{
		"AUTHFLOW_BACKEND":         "auth0",
		"AUTHFLOW_AUTH0_DOMAIN":    "tenant.auth0.com",
		"AUTHFLOW_AUTH0_CLIENT_ID": "client",
		"AUTHFLOW_AUTH0_AUDIENCE":  "https://api.example.com",
	})
	require.NoError(t, err)

	ac := cfg.Auth0Config()
	assert.Equal(t, "tenant.auth0.com", ac.Domain)
	assert.Equal(t, "Username-Password-Authentication", ac.Connection)
	assert.Equal(t, "https://api.example.com", ac.Audience)
	assert.Equal(t, 5*time.Minute, ac.CacheTTL)
}

func TestCSRFSettings(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, cfg.CSRF.Secret)
	assert.Equal(t, time.Hour, cfg.CSRF.Expiration)

	_, err = LoadWithEnvironment(map[string]string{"AUTHFLOW_CSRF_SECRET": "too-short"})
	require.Error(t, err)

	_, err = LoadWithEnvironment(map[string]string{"AUTHFLOW_CSRF_EXPIRATION": "10s"})
	require.Error(t, err)

	cfg, err = LoadWithEnvironment(map[string]string{
		"AUTHFLOW_CSRF_SECRET":     "0123456789abcdef0123456789abcdef",
		"AUTHFLOW_CSRF_EXPIRATION": "30m",
	})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.CSRF.Expiration)
}
