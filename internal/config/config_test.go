package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifequest/internal/engine"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lq.yaml")
	data := `
engine:
  low_balance_threshold: 8
  deletion_policy: cascade
  catalog:
    habits:
      - name: Walk
        points: 4
    rewards:
      - name: Tea
        cost: 2
server:
  addr: ":9999"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.LowBalanceThreshold)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, []engine.Habit{{Name: "Walk", Points: 4}}, cfg.Engine.Catalog.Habits)
	assert.Equal(t, "@gmail.com", cfg.Auth.EmailDomain)

	opts := cfg.EngineOptions()
	assert.Equal(t, engine.CascadeCompletions, opts.DeletionPolicy)
	assert.Len(t, opts.Catalog.Rewards, 1)
}

func TestLoadWithoutCatalogKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, engine.DefaultCatalog(), cfg.Engine.Catalog)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"policy":   "engine:\n  deletion_policy: purge\n",
		"ttl":      "server:\n  session_ttl: soon\n",
		"timezone": "engine:\n  timezone: Mars/Olympus\n",
		"schedule": "server:\n  sweep_schedule: every midnight\n",
		"catalog":  "engine:\n  catalog:\n    habits:\n      - name: ''\n        points: 1\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lq.yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIFEQUEST_ADDR", ":7000")
	t.Setenv("LIFEQUEST_DB", "/tmp/lq.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/lq.db", cfg.Auth.DatabasePath)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lq.yaml")
	cfg := DefaultConfig()
	cfg.Engine.LowBalanceThreshold = 3
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
