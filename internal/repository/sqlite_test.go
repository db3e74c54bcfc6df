package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", fixture.NewEmbeddedStore(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSeedsFromFixture(t *testing.T) {
	store := newTestStore(t)

	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, int64(2), sessions[0].ID)
	assert.Equal(t, int64(1), sessions[1].ID)
}

func TestSQLiteStoreCreateRenameDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local) }

	id, err := store.Create(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, domain.DefaultSessionTitle, sessions[0].Title)
	assert.Equal(t, "2025/6/1 08:00:00", sessions[0].CreateTime)

	require.NoError(t, store.Rename(ctx, id, "renamed"))
	require.NoError(t, store.Rename(ctx, 999, "ghost"))

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", sessions[0].Title)

	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, 999))

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSQLiteStoreIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.Create(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, first))

	second, err := store.Create(ctx, "b")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewSQLiteStore(dsn, fixture.NewEmbeddedStore(), zap.NewNop())
	require.NoError(t, err)
	id, err := store.Create(ctx, "durable")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, 1))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dsn, fixture.NewEmbeddedStore(), zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	sessions, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, "durable", sessions[0].Title)

	// deleted seed rows must not come back on reopen
	for _, sess := range sessions {
		assert.NotEqual(t, int64(1), sess.ID)
	}
}

func TestSQLiteStoreWrapsDatabaseErrors(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:", fixture.NewEmbeddedStore(), zap.NewNop())
	require.NoError(t, err)

	_, err = store.List(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Create(ctx, "after close")
	assert.ErrorContains(t, err, "failed to begin transaction")

	err = store.Rename(ctx, 1, "after close")
	assert.ErrorContains(t, err, "failed to rename session")

	err = store.Delete(ctx, 1)
	assert.ErrorContains(t, err, "failed to delete session")

	_, err = store.List(ctx)
	assert.ErrorContains(t, err, "failed to list sessions")
}
