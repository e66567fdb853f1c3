package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupKVStore(t *testing.T) (*KVStore, *bun.DB) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	store := NewKVStore(bunDB)
	require.NoError(t, store.EnsureSchema(context.Background()))

	return store, bunDB
}

func TestKVStore_SetGet(t *testing.T) {
	store, _ := setupKVStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "auth_user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "auth_user", `{"username":"alice"}`))

	value, ok, err := store.Get(ctx, "auth_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"username":"alice"}`, value)
}

func TestKVStore_SetOverwrites(t *testing.T) {
	store, db := setupKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth_user", "first"))
	require.NoError(t, store.Set(ctx, "auth_user", "second"))

	value, ok, err := store.Get(ctx, "auth_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", value)

	count, err := db.NewSelect().Model((*KVEntryModel)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestKVStore_DeleteIsIdempotent(t *testing.T) {
	store, _ := setupKVStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth_user", "value"))
	require.NoError(t, store.Delete(ctx, "auth_user"))
	require.NoError(t, store.Delete(ctx, "auth_user"))

	_, ok, err := store.Get(ctx, "auth_user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_FindMissingReturnsNotFound(t *testing.T) {
	store, _ := setupKVStore(t)

	_, err := store.Find(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = store.Find(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestKVStore_SetRequiresKey(t *testing.T) {
	store, _ := setupKVStore(t)
	require.Error(t, store.Set(context.Background(), "", "value"))
}

func TestMemoryKVStore(t *testing.T) {
	store := NewMemoryKVStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
