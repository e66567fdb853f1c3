package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSetExpiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ts := NewTokenSet("alice", "access", "id", "refresh", 3600, now)
	require.NotNil(t, ts.ExpiresAt)
	assert.False(t, ts.Expired(now.Add(59*time.Minute)))
	assert.True(t, ts.Expired(now.Add(time.Hour)))

	noExp := NewTokenSet("alice", "access", "id", "", 0, now)
	assert.Nil(t, noExp.ExpiresAt)
	assert.False(t, noExp.Expired(now.Add(24*time.Hour)))

	var missing *TokenSet
	assert.True(t, missing.Expired(now))
}

func TestStoreLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore()

	_, ok := s.Get()
	assert.False(t, ok)

	s.Set(NewTokenSet("alice", "access", "id", "refresh", 60, now))

	got, ok := s.Valid(now)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	got.AccessToken = "changed"
	again, _ := s.Get()
	assert.Equal(t, "access", again.AccessToken)

	_, ok = s.Valid(now.Add(2 * time.Minute))
	assert.False(t, ok)

	s.Clear()
	_, ok = s.Get()
	assert.False(t, ok)
}
