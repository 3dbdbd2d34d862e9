package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Cache.TTL())
	assert.Equal(t, "focusd", cfg.Database.Database)
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 8000, cfg.Server.Port)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "focusd.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"server:\n  port: 9100\ncache:\n  ttl_seconds: 1800\n"), 0o600))

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, 30*time.Minute, cfg.Cache.TTL())
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		t.Setenv("FOCUSD_PORT", "9200")
		t.Setenv("FOCUSD_CACHE_TTL", "120")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, 9200, cfg.Server.Port)
		assert.Equal(t, 2*time.Minute, cfg.Cache.TTL())
	})
}
