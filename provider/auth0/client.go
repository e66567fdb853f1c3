package auth0

import (
	"context"
	"fmt"

	"github.com/auth0/go-auth0/authentication"
	"github.com/auth0/go-auth0/authentication/database"
	"github.com/auth0/go-auth0/authentication/oauth"
)

// TokenSet is the subset of the token response kept by the backend
type TokenSet struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int64
}

// UserInfo is the profile returned by the userinfo endpoint
type UserInfo struct {
	Sub               string
	Email             string
	Name              string
	Nickname          string
	PreferredUsername string
}

// Client is the subset of the Auth0 Authentication API used by Backend.
type Client interface {
	LoginWithPassword(ctx context.Context, username, password string) (*TokenSet, error)
	Signup(ctx context.Context, username, email, password string) error
	UserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type authClient struct {
	api    *authentication.Authentication
	config Config
}

// NewClient creates an Authentication API client for cfg
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []authentication.Option{
		authentication.WithClientID(cfg.ClientID),
	}
	if cfg.ClientSecret != "" {
		opts = append(opts, authentication.WithClientSecret(cfg.ClientSecret))
	}

	api, err := authentication.New(ctx, cfg.Domain, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth0: failed to create authentication client: %w", err)
	}

	return &authClient{api: api, config: cfg}, nil
}

func (c *authClient) LoginWithPassword(ctx context.Context, username, password string) (*TokenSet, error) {
	tokens, err := c.api.OAuth.LoginWithPassword(ctx, oauth.LoginWithPasswordRequest{
		Username: username,
		Password: password,
		Scope:    c.config.Scope,
		Audience: c.config.Audience,
		Realm:    c.config.Connection,
	}, oauth.IDTokenValidationOptions{})
	if err != nil {
		return nil, err
	}

	return &TokenSet{
		AccessToken:  tokens.AccessToken,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

func (c *authClient) Signup(ctx context.Context, username, email, password string) error {
	req := database.SignupRequest{
		Connection: c.config.Connection,
		Email:      email,
		Password:   password,
	}
	if c.config.RequireUsername {
		req.Username = username
	}

	_, err := c.api.Database.Signup(ctx, req)
	return err
}

func (c *authClient) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	info, err := c.api.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return &UserInfo{
		Sub:               info.Sub,
		Email:             info.Email,
		Name:              info.Name,
		Nickname:          info.Nickname,
		PreferredUsername: info.PreferredUsername,
	}, nil
}

func (c *authClient) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return c.api.OAuth.RevokeRefreshToken(ctx, oauth.RevokeRefreshTokenRequest{
		Token: refreshToken,
	})
}
