package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	database, err := Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer func() { _ = Close(database) }()

	require.NoError(t, RunMigrations(database.DB, "sqlite"))

	version, err := Version(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var tables []string
	err = database.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'folders', 'files') ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"files", "folders", "users"}, tables)

	require.NoError(t, MigrateDown(database.DB, "sqlite"))

	version, err = Version(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "mysql", getDialect("mysql"))
}
