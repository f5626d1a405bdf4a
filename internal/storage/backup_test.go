package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupManager_CreateListDelete(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestCustomer(t, store, "Ana")

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	info, err := bm.Create(ctx, "before-import", "first")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, 1, info.RowCounts["customers"])
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)

	_, err = bm.Create(ctx, "before-import", "again")
	assert.ErrorIs(t, err, ErrBackupExists)

	list, err := bm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Description)

	require.NoError(t, bm.Delete(ctx, "before-import"))
	assert.ErrorIs(t, bm.Delete(ctx, "before-import"), ErrBackupNotFound)

	list, err = bm.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBackupManager_Restore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestCustomer(t, store, "Ana")

	bm, err := store.NewBackupManager()
	require.NoError(t, err)
	_, err = bm.Create(ctx, "one-customer", "")
	require.NoError(t, err)

	createTestCustomer(t, store, "Bia")
	require.NoError(t, bm.Restore(ctx, "one-customer"))

	reopened, err := NewSQLiteStorage(store.Path())
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBackupManager_RejectsBadIDs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	for _, id := range []string{"../escape", "a/b", "it's"} {
		_, err := bm.Create(ctx, id, "")
		assert.ErrorIs(t, err, ErrInvalidBackupID, id)
	}
	assert.ErrorIs(t, bm.Restore(ctx, "missing"), ErrBackupNotFound)
}

func TestBackupManager_RestoreCorrupted(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	bad := filepath.Join(filepath.Dir(store.Path()), "backups", "broken.db")
	require.NoError(t, os.WriteFile(bad, []byte("not a database"), 0600))

	assert.ErrorIs(t, bm.Restore(context.Background(), "broken"), ErrBackupCorrupted)
}

func TestNewBackupManager_InMemory(t *testing.T) {
	_, err := NewBackupManager(nil, ":memory:")
	assert.Error(t, err)
}

func TestBackupManager_ListFallsBackToRecordedMetadata(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestCustomer(t, store, "Ana")

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	created, err := bm.Create(ctx, "nightly", "before cleanup")
	require.NoError(t, err)
	require.NoError(t, os.Remove(bm.metaPath("nightly")))

	// A data file nobody recorded is not listed.
	stray := filepath.Join(filepath.Dir(store.Path()), "backups", "stray.db")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0600))

	list, err := bm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "nightly", list[0].ID)
	assert.Equal(t, "before cleanup", list[0].Description)
	assert.Equal(t, created.FileSize, list[0].FileSize)
	assert.Equal(t, 1, list[0].RowCounts["customers"])
	assert.Equal(t, ExpectedSchemaVersion, list[0].SchemaVersion)
}
