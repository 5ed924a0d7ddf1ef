package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// run each case from an empty temp dir so no config.toml is picked up
	chtemp := func(t *testing.T) {
		t.Helper()
		dir := t.TempDir()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}

	t.Run("defaults apply without a config file", func(t *testing.T) {
		chtemp(t)
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storein-mobile-core", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
		assert.Equal(t, 15, cfg.API.TimeoutSeconds)
		assert.Equal(t, int64(10<<20), cfg.API.MaxResponseSize)
		assert.Equal(t, 4, cfg.Commit.MaxInFlight)
		assert.False(t, cfg.Commit.RetainFailedItems)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		chtemp(t)
		t.Setenv("STOREIN_API_BASE_URL", "https://backend.example.com")
		t.Setenv("STOREIN_API_TIMEOUT_SECONDS", "30")
		t.Setenv("STOREIN_COMMIT_RETAIN_FAILED_ITEMS", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://backend.example.com", cfg.API.BaseURL)
		assert.Equal(t, 30, cfg.API.TimeoutSeconds)
		assert.True(t, cfg.Commit.RetainFailedItems)
	})

	t.Run("config file values are read", func(t *testing.T) {
		chtemp(t)
		wd, err := os.Getwd()
		require.NoError(t, err)
		content := "[api]\nbase_url = \"http://10.0.0.5:9000\"\n\n[log]\nlevel = \"debug\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(wd, "config.toml"), []byte(content), 0644))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://10.0.0.5:9000", cfg.API.BaseURL)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("relative base url is rejected", func(t *testing.T) {
		chtemp(t)
		t.Setenv("STOREIN_API_BASE_URL", "backend.example.com/api")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires an access token", func(t *testing.T) {
		chtemp(t)
		t.Setenv("STOREIN_APP_ENV", "production")
		_, err := Load()
		assert.Error(t, err)

		t.Setenv("STOREIN_API_ACCESS_TOKEN", "token-123")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "token-123", cfg.API.AccessToken)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults validate", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := base()
		cfg.API.TimeoutSeconds = -1
		assert.Error(t, cfg.validate())
	})

	t.Run("non-positive max in flight", func(t *testing.T) {
		cfg := base()
		cfg.Commit.MaxInFlight = -2
		assert.Error(t, cfg.validate())
	})
}
