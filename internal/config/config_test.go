package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "beacon.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 20, cfg.Anthropic.TimeoutSecs)
	assert.Equal(t, 15, cfg.GCS.TimeoutSecs)
	assert.Equal(t, 10, cfg.Scrape.FetchTimeoutSecs)
	assert.Equal(t, 120_000, cfg.Scrape.MaxTextBytes)
	assert.InDelta(t, 4.0, cfg.Scrape.RatePerSec, 0.001)
	assert.Equal(t, 5, cfg.Logos.Concurrency)
	assert.Empty(t, cfg.Anthropic.Key)
	assert.Empty(t, cfg.GCS.Key)
	assert.Empty(t, cfg.GCS.CX)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/beacon
log:
  level: debug
  format: console
server:
  port: 9090
anthropic:
  key: test-key
  model: test-model
gcs:
  key: gcs-key
  cx: gcs-cx
scrape:
  max_text_bytes: 64000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/beacon", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Anthropic.Key)
	assert.Equal(t, "test-model", cfg.Anthropic.Model)
	assert.Equal(t, "gcs-key", cfg.GCS.Key)
	assert.Equal(t, "gcs-cx", cfg.GCS.CX)
	assert.Equal(t, 64000, cfg.Scrape.MaxTextBytes)
	// Untouched sections keep defaults.
	assert.Equal(t, 10, cfg.Scrape.FetchTimeoutSecs)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"bad level", LogConfig{Level: "shouty", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, zap.L())
		})
	}
}
