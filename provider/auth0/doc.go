// Package auth0 implements the flow identity backend with the Auth0
// Authentication API (password realm grant, database sign up, userinfo).
//
// ID tokens are validated against the tenant JWKS before a stored session is
// reported present. Tokens stay in process memory.
package auth0
