package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Backend.UploadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 5*time.Second, cfg.Notify.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend:
  base_url: http://backend:9000
  request_timeout: 10s
monitor:
  interval: 1m
notify:
  ttl: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, 2*time.Second, cfg.Notify.TTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2*time.Minute, cfg.Backend.UploadTimeout)
}
