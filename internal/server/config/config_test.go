package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"server"}
	defer func() { os.Args = origArgs }()

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "secretKey", cfg.SecretKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"server"}
	defer func() { os.Args = origArgs }()

	t.Setenv("ADDRESS", ":9090")
	t.Setenv("SECRET_KEY", "fromenv")
	t.Setenv("ACCESS_TOKEN_VALIDITY", "30m")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "fromenv", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"server", "-a", ":7070", "-d", "postgres://flag", "-t", "5"}
	defer func() { os.Args = origArgs }()

	t.Setenv("ADDRESS", ":9090")

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "postgres://flag", cfg.DatabaseDSN)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestLoadConfig_JsonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"endpoint_addr": ":6060",
		"secret_key": "fromjson",
		"access_token_validity_duration": "45m"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	origArgs := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = origArgs }()

	cfg := LoadConfig()

	assert.Equal(t, ":6060", cfg.EndpointAddr)
	assert.Equal(t, "fromjson", cfg.SecretKey)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
}
