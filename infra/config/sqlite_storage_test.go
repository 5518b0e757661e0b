package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "data", "gopaysafe.db")
	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestNewSQLiteStorage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "gopaysafe.db")

	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NotNil(t, storage)
	defer storage.Close()

	assert.Equal(t, dbPath, storage.path)
	assert.NotNil(t, storage.db)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.SaveStoreSettings(0, map[string]string{
		KeyLocationID: "loc-1",
		KeyUserID:     "user-1",
	})
	require.NoError(t, err)

	values, err := storage.LoadStoreSettings(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyLocationID: "loc-1", KeyUserID: "user-1"}, values)

	t.Run("update_existing_key", func(t *testing.T) {
		require.NoError(t, storage.SaveStoreSettings(0, map[string]string{KeyLocationID: "loc-2"}))

		values, err := storage.LoadStoreSettings(0)
		require.NoError(t, err)
		assert.Equal(t, "loc-2", values[KeyLocationID])
		assert.Equal(t, "user-1", values[KeyUserID])
	})

	t.Run("empty_value_removes_key", func(t *testing.T) {
		require.NoError(t, storage.SaveStoreSettings(0, map[string]string{KeyUserID: ""}))

		values, err := storage.LoadStoreSettings(0)
		require.NoError(t, err)
		_, exists := values[KeyUserID]
		assert.False(t, exists)
	})

	t.Run("scopes_are_isolated", func(t *testing.T) {
		require.NoError(t, storage.SaveStoreSettings(3, map[string]string{KeyLocationID: "store-3"}))

		values, err := storage.LoadStoreSettings(3)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{KeyLocationID: "store-3"}, values)

		global, err := storage.LoadStoreSettings(0)
		require.NoError(t, err)
		assert.Equal(t, "loc-2", global[KeyLocationID])
	})
}

func TestSQLiteStorage_LoadMissingStore(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.LoadStoreSettings(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestSQLiteStorage_LoadAllStoreSettings(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveStoreSettings(0, map[string]string{KeyUseSandbox: "true"}))
	require.NoError(t, storage.SaveStoreSettings(1, map[string]string{KeyUseSandbox: "false"}))
	require.NoError(t, storage.SaveStoreSettings(2, map[string]string{KeyTransactMode: "1"}))

	all, err := storage.LoadAllStoreSettings()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "false", all[1][KeyUseSandbox])
	assert.Equal(t, "1", all[2][KeyTransactMode])
}

func TestSQLiteStorage_DeleteStoreSettings(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveStoreSettings(5, map[string]string{KeyLocationID: "loc"}))
	require.NoError(t, storage.DeleteStoreSettings(5))

	_, err := storage.LoadStoreSettings(5)
	assert.ErrorIs(t, err, ErrNoSettings)

	err = storage.DeleteStoreSettings(5)
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestSQLiteStorage_DeleteAll(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveStoreSettings(0, map[string]string{KeyLocationID: "a"}))
	require.NoError(t, storage.SaveStoreSettings(1, map[string]string{KeyLocationID: "b"}))
	require.NoError(t, storage.DeleteAll())

	all, err := storage.LoadAllStoreSettings()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteStorage_ConcurrentWrites(t *testing.T) {
	storage := newTestStorage(t)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(storeID int) {
			defer wg.Done()
			assert.NoError(t, storage.SaveStoreSettings(storeID, map[string]string{KeyLocationID: "loc"}))
		}(i)
	}
	wg.Wait()

	all, err := storage.LoadAllStoreSettings()
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestSQLiteStorage_GetStats(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveStoreSettings(0, map[string]string{KeyLocationID: "a", KeyUserID: "b"}))
	require.NoError(t, storage.SaveStoreSettings(1, map[string]string{KeyLocationID: "c"}))

	stats, err := storage.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats["total_settings"])
	assert.Equal(t, 2, stats["store_scopes"])
	assert.Equal(t, storage.path, stats["db_path"])
}
