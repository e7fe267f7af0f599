package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"STORE_BACKEND", "DATA_FILE", "REFRESH_INTERVAL", "SAVE_INTERVAL", "APP_ENV", "LOG_LEVEL", "REDIS_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "data.json", cfg.DataFile)
	assert.Equal(t, "promile:store", cfg.RedisKey)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, time.Hour, cfg.SaveInterval)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("REFRESH_INTERVAL", "30s")
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.NoError(t, cfg.ValidateBot())
}

func TestLoad_BadDuration(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SAVE_INTERVAL", "hourly")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreBackend:    BackendFile,
			DataFile:        "data.json",
			RefreshInterval: time.Minute,
			SaveInterval:    time.Hour,
		}
	}

	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown backend", mutate: func(c *Config) { c.StoreBackend = "postgres" }},
		{name: "empty data file", mutate: func(c *Config) { c.DataFile = "" }},
		{name: "redis without addr", mutate: func(c *Config) { c.StoreBackend = BackendRedis }},
		{name: "sqlite without path", mutate: func(c *Config) { c.StoreBackend = BackendSQLite }},
		{name: "zero refresh", mutate: func(c *Config) { c.RefreshInterval = 0 }},
		{name: "negative save", mutate: func(c *Config) { c.SaveInterval = -time.Second }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.Error(t, valid().ValidateBot())
}

// chdir is a Go 1.21-compatible stand-in for testing.T.Chdir (Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
