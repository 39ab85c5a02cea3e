package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: "file:inspector_test?mode=memory&cache=shared"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_assets (id INTEGER PRIMARY KEY, name_key TEXT NOT NULL, ip TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_assets")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		byName[col.Field] = col
	}

	assert.Equal(t, "integer", byName["id"].Type)
	assert.True(t, byName["id"].Primary)
	assert.False(t, byName["name_key"].Nullable)
	assert.True(t, byName["ip"].Nullable)

	// PRAGMA table_info returns no rows for an unknown table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}
