package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.MaxTotalPoints)
	assert.False(t, cfg.FlexibleEnding)
	assert.Equal(t, "chinchon_actions", cfg.HistorianQueueName)
	assert.Empty(t, cfg.RedisAddr)

	s := cfg.GameSettings()
	assert.Equal(t, 100, s.MaxTotalPoints)
	assert.Equal(t, 400, s.MaxTurnsPerRound)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_TOTAL_POINTS", "75")
	t.Setenv("FLEXIBLE_ENDING", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.MaxTotalPoints)
	assert.True(t, cfg.FlexibleEnding)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())

	s := cfg.GameSettings()
	assert.Equal(t, 75, s.MaxTotalPoints)
	assert.True(t, s.FlexibleEnding)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	path := filepath.Join(t.TempDir(), "chinchon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\nmax_total_points: 50\nlog_level: nonsense\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 50, cfg.MaxTotalPoints)
	assert.Equal(t, logrus.InfoLevel, cfg.NewLogger().GetLevel())
}

func TestLoadRejectsBadLimit(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_TOTAL_POINTS", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "max_total_points")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
