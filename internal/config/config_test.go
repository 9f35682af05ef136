package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file", func(t *testing.T) {
		// Given: a config file with game settings
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `
log-level: debug
http-port: "8081"
redis:
  enabled: true
  host: cache
game:
  computer-delay: 1s
  default-difficulty: easy
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: it is loaded
		conf, err := Load(path)

		// Then: file values and defaults are both present
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8081", conf.HTTPPort)
		assert.True(t, conf.Redis.Enabled)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, time.Second, conf.Game.ComputerDelay)
		assert.Equal(t, "easy", conf.Game.DefaultDifficulty)
		assert.Equal(t, "ai", conf.Game.DefaultMode)
		assert.Equal(t, 2*time.Hour, conf.Game.SessionTTL)
	})

	t.Run("Missing file falls back to the environment", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("GAME_DEFAULT_SYMBOL", "O")

		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, "7070", conf.HTTPPort)
		assert.Equal(t, "O", conf.Game.DefaultSymbol)
		assert.Equal(t, 400*time.Millisecond, conf.Game.ComputerDelay)
		assert.False(t, conf.Redis.Enabled)
	})
}
