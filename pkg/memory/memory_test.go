package memory_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/campusbite/pkg/memory"
)

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, store memory.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "authToken")
	assert.ErrorIs(t, err, memory.ErrNotFound)

	require.NoError(t, store.Set(ctx, "authToken", "tok-1", 0))
	got, err := store.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	// overwrite
	require.NoError(t, store.Set(ctx, "authToken", "tok-2", 0))
	got, err = store.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)

	exists, err := store.Exists(ctx, "authToken")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "authToken"))
	exists, err = store.Exists(ctx, "authToken")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is fine
	require.NoError(t, store.Delete(ctx, "authToken"))
}

func TestInMemoryStore(t *testing.T) {
	store := memory.NewInMemoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestInMemoryStoreExpiration(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "expiring", "v", 50*time.Millisecond))
	exists, err := store.Exists(ctx, "expiring")
	require.NoError(t, err)
	assert.True(t, exists)

	time.Sleep(80 * time.Millisecond)

	_, err = store.Get(ctx, "expiring")
	assert.ErrorIs(t, err, memory.ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := memory.NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	first, err := memory.NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "user", `{"id":"u1"}`, 0))
	require.NoError(t, first.Close())

	second, err := memory.NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, got)
}

func TestSQLiteStoreExpiration(t *testing.T) {
	ctx := context.Background()
	store, err := memory.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "short", "v", 30*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	exists, err := store.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := memory.NewRedisStore("redis://"+mr.Addr(), "test")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := memory.NewRedisStore("redis://"+mr.Addr(), "campus")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "authToken", "abc", time.Minute))

	raw, err := mr.Get("campus:authToken")
	require.NoError(t, err)
	assert.Equal(t, "abc", raw)
	assert.Equal(t, time.Minute, mr.TTL("campus:authToken"))
}

func TestNewRedisStoreInvalidURL(t *testing.T) {
	_, err := memory.NewRedisStore("not-a-url", "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := memory.Open(ctx, memory.Options{Provider: memory.ProviderMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.InMemoryStore{}, store)

	store, err = memory.Open(ctx, memory.Options{
		Provider:   memory.ProviderSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "s.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &memory.SQLiteStore{}, store)
	store.Close()

	_, err = memory.Open(ctx, memory.Options{Provider: "etcd"})
	assert.Error(t, err)
}
