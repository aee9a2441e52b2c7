package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/campusbite/pkg/memory"
	"github.com/itsneelabh/campusbite/pkg/models"
	"github.com/itsneelabh/campusbite/pkg/session"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	s := session.New(store, nil)

	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, s.Begin(ctx, "tok", models.User{ID: "u1", Phone: "9876543210", Name: "Asha"}))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	user, err = s.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Asha", user.Name)

	// raw keys match what the mobile client stored
	raw, err := store.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", raw)

	require.NoError(t, s.End(ctx))
	require.NoError(t, s.End(ctx))

	ok, err = s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	user, err = s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionRejectsEmptyToken(t *testing.T) {
	s := session.New(memory.NewInMemoryStore(), nil)
	assert.Error(t, s.Begin(context.Background(), "", models.User{}))
}

func TestSessionSurvivesRestartWithSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := memory.NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, session.New(store, nil).Begin(ctx, "persisted", models.User{ID: "u1"}))
	require.NoError(t, store.Close())

	reopened, err := memory.NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	token, err := session.New(reopened, nil).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestSessionCorruptProfile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	require.NoError(t, store.Set(ctx, session.UserKey, "{not json", 0))

	_, err := session.New(store, nil).User(ctx)
	assert.Error(t, err)
}
