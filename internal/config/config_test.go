package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "main", cfg.Room.Name)
	assert.Equal(t, "group", cfg.Room.Topology)
	assert.Equal(t, 54*time.Second, cfg.Signal.PingPeriod)
	assert.EqualValues(t, 32768, cfg.Signal.ReadLimit)
	assert.Empty(t, cfg.Monitor.URL)
	assert.Equal(t, 64, cfg.Monitor.SendBuffer)
	assert.Equal(t, "voicestats", cfg.Metrics.Namespace)
	assert.Equal(t, 3, cfg.Feedback.Burst)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers)
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	yaml := `
mode: debug
port: 9000
room:
  name: room-42
  topology: p2p
  identity: alice
signal:
  url: ws://sfu:8080/api/ws/signal
  ping_period: 10s
monitor:
  url: ws://collector/ws
  app_id: app-1
feedback:
  rate_per_minute: 2
ice_servers:
  - stun:example.org:3478
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "room-42", cfg.Room.Name)
	assert.Equal(t, "p2p", cfg.Room.Topology)
	assert.Equal(t, "alice", cfg.Room.Identity)
	assert.Equal(t, "ws://sfu:8080/api/ws/signal", cfg.Signal.URL)
	assert.Equal(t, 10*time.Second, cfg.Signal.PingPeriod)
	assert.Equal(t, 5*time.Second, cfg.Signal.WriteTimeout)
	assert.Equal(t, "ws://collector/ws", cfg.Monitor.URL)
	assert.Equal(t, "app-1", cfg.Monitor.AppID)
	assert.InDelta(t, 2.0, cfg.Feedback.RatePerMinute, 0.001)
	assert.Equal(t, []string{"stun:example.org:3478"}, cfg.ICEServers)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("VOICESTATS_ROOM_NAME", "from-env")
	t.Setenv("VOICESTATS_PORT", "7000")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Room.Name)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoad_UsesConfigEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.ci.yaml"), []byte("port: 9100\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_ENV", "ci")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}
