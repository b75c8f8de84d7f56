package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/airfight/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLite(t *testing.T) {
	db, err := GetSqliteDB(filepath.Join(t.TempDir(), "airfight.db"))
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	var infos []model.ServerInfo
	require.NoError(t, db.Find(&infos).Error)
	assert.Len(t, infos, 1)

	// second run must not add another info row
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Find(&infos).Error)
	assert.Len(t, infos, 1)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := GetSqliteDB(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	out := filepath.Join(dir, "dump.db")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))
	require.NoError(t, DumpMemoryDBToDisk(db, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(len("stale")))
}

func TestDumpMemoryDBToDisk_Errors(t *testing.T) {
	assert.Error(t, DumpMemoryDBToDisk(nil, "x.db"))

	db, err := GetSqliteDB(filepath.Join(t.TempDir(), "live.db"))
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestGetBackupDBPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.db"), 0o755))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")}, paths)

	_, err = GetBackupDBPaths(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestManager_SetupWithoutConnection(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Setup())
	assert.False(t, m.IsValid)
}
