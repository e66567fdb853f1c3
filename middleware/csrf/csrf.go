// Package csrf protects the flow's state changing forms with stateless
// tokens. A token is an HMAC over its issue time, a random nonce and a
// client binding, so no server side token store is needed.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

var (
	ErrTokenMismatch = errors.New("CSRF token mismatch")
	ErrTokenMissing  = errors.New("CSRF token missing")
	ErrTokenExpired  = errors.New("CSRF token expired")
)

// DefaultTokenLength is the nonce size in bytes
const DefaultTokenLength = 16

// MinSecureKeyLength is the shortest accepted signing key
const MinSecureKeyLength = 32

const (
	DefaultContextKey    = "csrf_token"
	DefaultFormFieldName = "_token"
	DefaultHeaderName    = "X-CSRF-Token"
	DefaultExpiration    = time.Hour
)

// Config defines the configuration for the CSRF middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	// TokenLength is the nonce size in bytes
	TokenLength int

	// ContextKey is the locals key holding the token issued for the request.
	// The form field name is stored under ContextKey + "_field".
	ContextKey string

	FormFieldName string
	HeaderName    string

	// SafeMethods are not validated
	SafeMethods []string

	// Expiration is how long an issued token is accepted
	Expiration time.Duration

	// SecureKey signs tokens. When empty a random key is generated, so
	// tokens do not survive a restart.
	SecureKey []byte

	// Binding returns the client value a token is tied to. Defaults to
	// the client IP.
	Binding func(router.Context) string

	ErrorHandler router.ErrorHandler

	// Now is the clock used to issue and expire tokens
	Now func() time.Time
}

// New creates the middleware. Every request gets a fresh token in its
// locals; requests with an unsafe method must echo a valid one back in the
// form field or the header.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			binding := cfg.Binding(ctx)

			method := strings.ToUpper(ctx.Method())
			if !slices.Contains(cfg.SafeMethods, method) {
				if err := cfg.validate(extractToken(ctx, cfg), binding); err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
			}

			token, err := cfg.issue(binding)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, token)
			ctx.Locals(cfg.ContextKey+"_field", cfg.FormFieldName)

			return ctx.Next()
		}
	}
}

func (cfg Config) issue(binding string) (string, error) {
	nonce := make([]byte, cfg.TokenLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	payload := strconv.FormatInt(cfg.Now().UTC().Unix(), 10) + ":" + hex.EncodeToString(nonce)
	token := payload + ":" + hex.EncodeToString(cfg.sign(payload, binding))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func (cfg Config) validate(token, binding string) error {
	if token == "" {
		return ErrTokenMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return ErrTokenMismatch
	}

	issuedAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	signature, err := hex.DecodeString(parts[2])
	if err != nil {
		return ErrTokenMismatch
	}

	payload := parts[0] + ":" + parts[1]
	if !hmac.Equal(signature, cfg.sign(payload, binding)) {
		return ErrTokenMismatch
	}

	if cfg.Now().UTC().After(time.Unix(issuedAt, 0).Add(cfg.Expiration)) {
		return ErrTokenExpired
	}

	return nil
}

// the binding is signed but not embedded in the token
func (cfg Config) sign(payload, binding string) []byte {
	mac := hmac.New(sha256.New, cfg.SecureKey)
	mac.Write([]byte(payload + ":" + binding))
	return mac.Sum(nil)
}

func extractToken(ctx router.Context, cfg Config) string {
	if token := strings.TrimSpace(ctx.Header(cfg.HeaderName)); token != "" {
		return token
	}
	return strings.TrimSpace(ctx.FormValue(cfg.FormFieldName))
}

func clientBinding(ctx router.Context) string {
	if sessionID, ok := ctx.Locals("session_id").(string); ok && sessionID != "" {
		return "session:" + sessionID
	}
	return "ip:" + ctx.IP()
}

// TemplateHelpers returns csrf_token and csrf_field for the token issued to
// the request. tokenKey defaults to DefaultContextKey.
//
//	<form method="post">{{ csrf_field|safe }}</form>
func TemplateHelpers(ctx router.Context, tokenKey string) map[string]any {
	if tokenKey == "" {
		tokenKey = DefaultContextKey
	}

	token, _ := ctx.Locals(tokenKey).(string)

	fieldName := DefaultFormFieldName
	if v, ok := ctx.Locals(tokenKey + "_field").(string); ok && v != "" {
		fieldName = v
	}

	return map[string]any{
		"csrf_token": token,
		"csrf_field": `<input type="hidden" name="` + html.EscapeString(fieldName) + `" value="` + html.EscapeString(token) + `">`,
	}
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenLength <= 0 {
		cfg.TokenLength = DefaultTokenLength
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}

	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultExpiration
	}

	if cfg.Binding == nil {
		cfg.Binding = clientBinding
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	cfg.SecureKey = initializeSecureKey(cfg.SecureKey)

	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return ctx.Status(router.StatusBadRequest).SendString("CSRF token missing")
	case errors.Is(err, ErrTokenMismatch):
		return ctx.Status(router.StatusForbidden).SendString("CSRF token mismatch")
	case errors.Is(err, ErrTokenExpired):
		return ctx.Status(router.StatusForbidden).SendString("CSRF token expired, reload the page")
	default:
		return ctx.Status(router.StatusInternalServerError).SendString("CSRF validation error")
	}
}

func initializeSecureKey(current []byte) []byte {
	if len(current) > 0 {
		if len(current) < MinSecureKeyLength {
			panic(fmt.Errorf("csrf: secure key must be at least %d bytes, got %d", MinSecureKeyLength, len(current)))
		}
		return current
	}
	key := make([]byte, MinSecureKeyLength)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		panic(fmt.Errorf("csrf: unable to initialize secure key: %w", err))
	}
	return key
}
