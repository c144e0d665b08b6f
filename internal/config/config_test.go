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

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, uint32(64*1024), cfg.HashMemory)
	assert.Equal(t, uint32(3), cfg.HashIterations)
	assert.Equal(t, uint8(4), cfg.HashParallelism)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.TrustedSubnet)
}

func TestNewRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_ADDRESS", "localhost:9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("TRUSTED_SUBNET", "10.0.0.0/8")
	t.Setenv("HASH_ITERATIONS", "2")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "localhost:9090", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
	assert.Equal(t, uint32(2), cfg.HashIterations)
}

func TestJSONFileOverridesDefaultsButNotEnv(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	content, err := json.Marshal(map[string]interface{}{
		"server_address": "localhost:7070",
		"log_level":      "warn",
		"jwt_secret":     "secret-from-file",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configFile, content, 0o644))

	t.Setenv("CONFIG", configFile)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "localhost:7070", cfg.RunAddr)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "secret-from-file", cfg.JWTSecret)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log level", key: "LOG_LEVEL", value: "loud"},
		{name: "malformed address", key: "SERVER_ADDRESS", value: "no-port-here"},
		{name: "malformed subnet", key: "TRUSTED_SUBNET", value: "not-a-cidr"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(testCase.key, testCase.value)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestParseFlags(t *testing.T) {
	values := defaultConfig

	err := parseFlags(&values, []string{
		"-a", "localhost:6060",
		"-l", "debug",
		"-f", "/tmp/bookmarks.json",
		"-t", "192.168.1.0/24",
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6060", values.RunAddr)
	assert.Equal(t, "debug", values.LogLevel)
	assert.Equal(t, "/tmp/bookmarks.json", values.DBFileName)
	assert.Equal(t, "192.168.1.0/24", values.TrustedSubnet)
	assert.Equal(t, "migrations", values.MigrationsDir)
}

func TestConfigFilePathPrefersEnv(t *testing.T) {
	t.Setenv("CONFIG", "/etc/bookmarkapi.json")
	assert.Equal(t, "/etc/bookmarkapi.json", configFilePath([]string{"-c", "ignored.json"}))

	t.Setenv("CONFIG", "")
	assert.Equal(t, "from-flag.json", configFilePath([]string{"-a", ":8080", "-c", "from-flag.json"}))
	assert.Equal(t, "", configFilePath([]string{"-a", ":8080"}))
}
