// Package session keeps the tokens issued by a managed identity service in
// process memory. Tokens are never persisted.
package session

import (
	"sync"
	"time"
)

// TokenSet holds the credentials returned by a successful sign in
type TokenSet struct {
	Username     string     `json:"username,omitempty"`
	AccessToken  string     `json:"-"`
	IDToken      string     `json:"-"`
	RefreshToken string     `json:"-"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// NewTokenSet builds a set issued at now that expires after expiresIn
// seconds. A non positive expiresIn means no known expiration.
func NewTokenSet(username, access, id, refresh string, expiresIn int64, now time.Time) *TokenSet {
	issued := now
	ts := &TokenSet{
		Username:     username,
		AccessToken:  access,
		IDToken:      id,
		RefreshToken: refresh,
		IssuedAt:     &issued,
	}
	if expiresIn > 0 {
		exp := now.Add(time.Duration(expiresIn) * time.Second)
		ts.ExpiresAt = &exp
	}
	return ts
}

// Expired reports whether the set expired at t
func (t *TokenSet) Expired(at time.Time) bool {
	if t == nil {
		return true
	}
	if t.ExpiresAt == nil {
		return false
	}
	return !at.Before(*t.ExpiresAt)
}

// Store is a mutex guarded holder for the current TokenSet
type Store struct {
	mu     sync.RWMutex
	tokens *TokenSet
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get() (*TokenSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil, false
	}
	c := *s.tokens
	return &c, true
}

func (s *Store) Set(t *TokenSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		s.tokens = nil
		return
	}
	c := *t
	s.tokens = &c
}

func (s *Store) Clear() {
	s.Set(nil)
}

// Valid returns the current set when present and not expired at now
func (s *Store) Valid(now time.Time) (*TokenSet, bool) {
	t, ok := s.Get()
	if !ok || t.Expired(now) {
		return nil, false
	}
	return t, true
}
