// Package cognito implements the flow identity backend against an Amazon
// Cognito user pool using the USER_PASSWORD_AUTH flow. Tokens stay in memory.
package cognito
