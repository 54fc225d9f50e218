package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	content := `
companion:
  host: 10.0.0.5
  port: 8888
simulation:
  startup_delay: 2s
log:
  level: debug
redis:
  enabled: true
  addr: redis:6379
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5:8888", cfg.Companion.Address())
	assert.Equal(t, 2*time.Second, cfg.Simulation.StartupDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)

	// 未覆盖的字段保持默认值
	assert.Equal(t, "CC2022-Control-Panel", cfg.Storage.AppName)
	assert.Equal(t, "cansat_telemetry", cfg.Redis.Channel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, "127.0.0.1:7777", cfg.Companion.Address())
	assert.Equal(t, 5*time.Second, cfg.Simulation.StartupDelay)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Monitor.Enabled)
}
