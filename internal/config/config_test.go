package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, ".cache", cfg.Paths.CacheDir)
	assert.Equal(t, "figdex.db", cfg.Paths.DatabasePath)
	assert.Equal(t, 32, cfg.Brickset.TotalPages)
	assert.Equal(t, time.Second, cfg.Brickset.PageDelay)
	assert.Equal(t, 700*time.Millisecond, cfg.Rebrickable.ItemDelay)
	assert.Equal(t, 50, cfg.Rebrickable.FlushEvery)
	assert.Equal(t, 400*time.Millisecond, cfg.Bricklink.ItemDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Bricklink.PairDelay)
	assert.Equal(t, 100, cfg.Bricklink.FlushEvery)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Bricklink.Credentials.Configured())
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FIGDEX_BRICKSET_TOTAL_PAGES", "5")
	t.Setenv("FIGDEX_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Brickset.TotalPages)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouty", Format: "console"})
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}
