package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
	assert.Equal(t, "lifeweeks.db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_OverlaysOnlyProvidedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_base_url": "http://sync.example.com", "online_check_interval": "5s"}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"client", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://sync.example.com", cfg.ServerBaseURL)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "lifeweeks.db", cfg.DatabaseDSN) // untouched
}

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"client", "-a", "http://other:9090", "-d", "alt.db", "-i", "7"}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://other:9090", cfg.ServerBaseURL)
	assert.Equal(t, "alt.db", cfg.DatabaseDSN)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
}

func TestJsonConfig_UnmarshalDuration(t *testing.T) {
	var jc JsonConfig
	require.NoError(t, json.Unmarshal([]byte(`{"online_check_interval": "1m30s"}`), &jc))
	assert.Equal(t, 90*time.Second, jc.OnlineCheckInterval.Duration)
}
