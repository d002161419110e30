package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedlam-render/sequencer/internal/model"
)

func newTestManager() *Manager {
	return NewManager(zerolog.Nop())
}

func TestGetSqliteDB_InMemory(t *testing.T) {
	m := newTestManager()

	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestGetSqliteDB_File(t *testing.T) {
	m := newTestManager()
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := m.GetSqliteDB(path)
	require.NoError(t, err)
	require.NotNil(t, db)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSetup_MigratesCatalogSchema(t *testing.T) {
	m := newTestManager()

	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	m.DB = db

	require.NoError(t, m.Setup())
	assert.True(t, m.DB.Migrator().HasTable(&model.Run{}))
	assert.True(t, m.DB.Migrator().HasTable(&model.SequenceRecord{}))
}

func TestConnect_SqliteType(t *testing.T) {
	viper.Set("manifest.type", "sqlite")
	viper.Set("manifest.path", filepath.Join(t.TempDir(), "catalog.db"))
	t.Cleanup(func() {
		viper.Set("manifest.type", nil)
		viper.Set("manifest.path", nil)
	})

	m := newTestManager()
	require.NoError(t, m.Connect())
	t.Cleanup(func() { _ = m.Close() })

	assert.True(t, m.IsValid)
	assert.False(t, m.ShouldSaveLocal)
	assert.NotEmpty(t, m.SqliteFilePath)
}

func TestDumpMemoryToDisk(t *testing.T) {
	m := newTestManager()

	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	m.DB = db
	require.NoError(t, m.Setup())

	run := model.Run{RunID: uuid.New(), CSVPath: "be_seq.csv", Preset: "Static", Total: 3}
	require.NoError(t, m.DB.Create(&run).Error)

	m.SqliteFilePath = filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, m.DumpMemoryToDisk())

	_, err = os.Stat(m.SqliteFilePath)
	require.NoError(t, err)

	// the dump must carry the catalog rows
	reopened := newTestManager()
	dumpDB, err := reopened.GetSqliteDB(m.SqliteFilePath)
	require.NoError(t, err)

	var count int64
	require.NoError(t, dumpDB.Model(&model.Run{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryToDisk_NoPath(t *testing.T) {
	m := newTestManager()
	assert.Error(t, m.DumpMemoryToDisk())
}
