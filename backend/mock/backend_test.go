package mock

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	authflow "github.com/goliatone/go-auth-flow"
	"github.com/goliatone/go-auth-flow/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var userIDPattern = regexp.MustCompile(`^user-\d+$`)

func newSQLiteKV(t *testing.T) *repository.KVStore {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	kv := repository.NewKVStore(bunDB)
	require.NoError(t, kv.EnsureSchema(context.Background()))
	return kv
}

func TestSignInPersistsUser(t *testing.T) {
	kv := newSQLiteKV(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	backend := New(kv, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, backend.SignIn(ctx, "alice", "password1"))
	assert.True(t, backend.CheckSessionPresent(ctx))

	user, err := backend.FetchCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Regexp(t, userIDPattern, user.UserID)
	assert.Equal(t, "user-1714564800000", user.UserID)
	assert.Equal(t, "alice@example.com", user.Email)

	raw, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)

	var stored authflow.AuthenticatedUser
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, *user, stored)

	encoded, err := json.Marshal(user)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestSignInShortSecretWritesNothing(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	backend := New(kv)
	ctx := context.Background()

	err := backend.SignIn(ctx, "bob", "short")
	require.Error(t, err)
	assert.True(t, authflow.IsInvalidCredentials(err))

	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, backend.CheckSessionPresent(ctx))
}

func TestSignInShortSecretKeepsExistingRecord(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	backend := New(kv)
	ctx := context.Background()

	require.NoError(t, backend.SignIn(ctx, "alice", "password1"))
	before, _, _ := kv.Get(ctx, StorageKey)

	require.Error(t, backend.SignIn(ctx, "bob", "short"))

	after, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestSignOutRemovesRecord(t *testing.T) {
	kv := newSQLiteKV(t)
	backend := New(kv)
	ctx := context.Background()

	require.NoError(t, backend.SignIn(ctx, "alice", "password1"))
	require.NoError(t, backend.SignOut(ctx))

	assert.False(t, backend.CheckSessionPresent(ctx))
	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.SignOut(ctx))
}

func TestFetchCurrentUserWithoutSession(t *testing.T) {
	backend := New(repository.NewMemoryKVStore())

	_, err := backend.FetchCurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, authflow.IsNoActiveSession(err))
}

func TestFetchCurrentUserCorruptRecord(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, "{not-json"))
	backend := New(kv)

	_, err := backend.FetchCurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, authflow.IsNoActiveSession(err))
}

func TestSignUpChecksPasswordAndStoresNothing(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	backend := New(kv)
	ctx := context.Background()

	err := backend.SignUp(ctx, "carol", "weak", "carol@example.com")
	require.Error(t, err)
	assert.True(t, authflow.IsWeakPassword(err))

	require.NoError(t, backend.SignUp(ctx, "carol", "Str0ng!pass", "carol@example.com"))
	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailDomainOption(t *testing.T) {
	backend := New(repository.NewMemoryKVStore(), WithEmailDomain("@ejemplo.com"))
	ctx := context.Background()

	require.NoError(t, backend.SignIn(ctx, "dora", "password1"))
	user, err := backend.FetchCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dora@ejemplo.com", user.Email)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error        { return f.err }
func (f failingKV) Delete(context.Context, string) error             { return f.err }

func TestStorageFailures(t *testing.T) {
	backend := New(failingKV{err: errors.New("disk full")})
	ctx := context.Background()

	assert.False(t, backend.CheckSessionPresent(ctx))

	err := backend.SignIn(ctx, "alice", "password1")
	require.Error(t, err)
	assert.True(t, authflow.IsAdapterFailure(err))
	assert.Equal(t, "disk full", authflow.UserMessage(err, "fallback"))

	err = backend.SignOut(ctx)
	require.Error(t, err)
	assert.True(t, authflow.IsAdapterFailure(err))

	_, err = backend.FetchCurrentUser(ctx)
	assert.True(t, authflow.IsNoActiveSession(err))
}
