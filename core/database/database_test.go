package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "127.0.0.1",
			Port:           9, // discard port, nothing listens
			User:           "root",
			Password:       "wrongpassword",
			Name:           "assets",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})

	t.Run("SQLite", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: "file:connect_test?mode=memory&cache=shared"})
		require.NoError(t, err)

		var fk int
		require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
		assert.Equal(t, 1, fk)
	})
}

func TestConfig_IsValidDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   bool
	}{
		{DriverMySQL, true},
		{DriverPostgres, true},
		{DriverSQLite, true},
		{"mssql", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{Driver: tt.driver}.IsValidDriver())
		})
	}
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor(Config{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p@ss", Name: "assets"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = dialectorFor(Config{Driver: DriverMySQL, Host: "db", Port: 3306, User: "u", Name: "assets"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
}
