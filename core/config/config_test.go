package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.BodyLimitMB)
	assert.Equal(t, "imports", cfg.Storage.Bucket)
	assert.Equal(t, "raw", cfg.Storage.ArchivePrefix)
	assert.Equal(t, "Security Team", cfg.Import.DefaultOwner)
	assert.Equal(t, "Server", cfg.Import.DefaultType)
	assert.True(t, cfg.Import.IPFallback)
	assert.True(t, cfg.Import.ArchiveUploads)
	assert.Equal(t, 500, cfg.Platform.PageSize)
	assert.False(t, cfg.Platform.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "IMPORT_DEFAULT_OWNER=Blue Team\nIMPORT_IP_FALLBACK=false\nDATABASE_DRIVER=sqlite\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("IMPORT_DEFAULT_OWNER")
		os.Unsetenv("IMPORT_IP_FALLBACK")
		os.Unsetenv("DATABASE_DRIVER")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Blue Team", cfg.Import.DefaultOwner)
	assert.False(t, cfg.Import.IPFallback)
	assert.Equal(t, "sqlite", cfg.Database.Driver)

	p, err := PolicyLoader(dir)(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Blue Team", p.DefaultOwner)
	assert.False(t, p.IPFallback)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Database.Driver = "oracle"
	cfg.Server.BodyLimitMB = 0
	cfg.Platform.BaseURL = "https://api.example.com"
	cfg.Platform.PageSize = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "server.body_limit_mb")
	assert.Contains(t, err.Error(), "platform.page_size")
}

func TestEnvPath(t *testing.T) {
	assert.Equal(t, ".env", EnvPath("."))
	assert.Equal(t, filepath.Join("conf", ".env"), EnvPath("conf"))
}
