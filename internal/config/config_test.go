package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "data/tradepost.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.Seed)
	assert.Empty(t, cfg.CatalogPath)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("TRADEPOST_DB_PATH", "/tmp/x.db")
	t.Setenv("TRADEPOST_SEED", "77")
	t.Setenv("TRADEPOST_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, int64(77), cfg.Seed)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRADEPOST_TUNING_PATH=from-file.yaml\nTRADEPOST_MAP_SEED=9\n"), 0o644))
	t.Setenv("TRADEPOST_TUNING_PATH", "from-env.yaml")
	// godotenv sets variables with os.Setenv; register them so the test restores them.
	t.Setenv("TRADEPOST_MAP_SEED", "")
	require.NoError(t, os.Unsetenv("TRADEPOST_MAP_SEED"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.yaml", cfg.TuningPath)
	assert.Equal(t, int64(9), cfg.MapSeed)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TRADEPOST_LOG_LEVEL", "loud")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("TRADEPOST_LOG_LEVEL", "debug")
	t.Setenv("TRADEPOST_LOG_FORMAT", "xml")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("TRADEPOST_LOG_FORMAT", "text")
	t.Setenv("TRADEPOST_SEED", "abc")
	_, err = Load("")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
