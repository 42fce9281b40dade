package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a store on a fresh temp directory and closes it
// when the test finishes.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "index.db"), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_CreatesNestedDirectories(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "data", "vaultsync", "index")

	store, err := NewStore(nested)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nested)
}

func TestNewStore_AppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	var applied int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied)
	require.NoError(t, err)
	assert.Greater(t, applied, 0)

	// The index schema must be in place before any reconcile runs.
	for _, table := range []string{"points", "scheduled_tasks", "task_results"} {
		var n int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s should exist", table)
	}
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same database must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var applied int
	err = store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store := newTestStore(t)

	// The pragma travels in the DSN, so every pooled connection has it.
	var enabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	assert.Equal(t, 1, enabled)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store := newTestStore(t)

	assert.NotNil(t, store.VectorIndex())
	assert.NotNil(t, store.SchedulerStore())
}

func TestSchemaVersion_FreshDatabase(t *testing.T) {
	store := newTestStore(t)

	version, err := store.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}
