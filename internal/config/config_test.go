package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[server]
port = 9090
host = "127.0.0.1"
cors_allowed_origins = ["https://dashboard.example.com"]

[logging]
level = "debug"
format = "json"

[gemini]
api_key = "file-key"
model = "gemini-2.0-flash"
temperature = 0.4
max_output_tokens = 256
breaker_max_failures = 3
`

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// clearEnv unsets every variable the overlay reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "AEROAI_PORT", "AEROAI_HOST", "AEROAI_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.False(t, cfg.VoiceEnabled())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.toml", sampleTOML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"https://dashboard.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 3, cfg.Gemini.BreakerMaxFailures)
	require.NotNil(t, cfg.Gemini.Temperature)
	assert.Equal(t, 0.4, *cfg.Gemini.Temperature)
	assert.Equal(t, 256, cfg.Gemini.MaxOutputTokens)

	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Gemini.BreakerOpenSecs)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSec)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")

	bad := writeConfig(t, t.TempDir(), "bad.toml", "[server\nport = ")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to decode config file")
}

func TestLoadWithFallbackUsesDefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, used, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithFallbackSearchOrder(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	writeConfig(t, dir, "config.toml", "[server]\nport = 7000\n")
	cfg, used, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "config.toml", used)
	assert.Equal(t, 7000, cfg.Server.Port)

	writeConfig(t, dir, filepath.Join("configs", "config.toml"), "[server]\nport = 7100\n")
	cfg, used, err = LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "configs/config.toml", used)
	assert.Equal(t, 7100, cfg.Server.Port)

	explicit := writeConfig(t, dir, "custom.toml", "[server]\nport = 7200\n")
	cfg, used, err = LoadWithFallback(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, used)
	assert.Equal(t, 7200, cfg.Server.Port)
}

func TestLoadWithFallbackExplicitPathMustExist(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, _, err := LoadWithFallback("nope.toml")
	assert.ErrorContains(t, err, "config file not found: nope.toml")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "config.toml", sampleTOML)

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("AEROAI_PORT", "8123")
	t.Setenv("AEROAI_LOG_LEVEL", "warn")

	cfg, _, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset variables keep file values")
	assert.True(t, cfg.VoiceEnabled())
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, ".env", "GEMINI_API_KEY=dotenv-key\n")
	// godotenv sets the variable process-wide; make sure it is removed afterwards
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, _, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.Gemini.APIKey)
}

func TestEmptyEnvironmentKeepsFileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "config.toml", sampleTOML)
	t.Setenv("AEROAI_PORT", "")
	t.Setenv("AEROAI_HOST", "")

	cfg, _, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestEmptyDotEnvKeyKeepsFileKey(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "config.toml", sampleTOML)
	writeConfig(t, dir, ".env", "GEMINI_API_KEY=\n")
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, _, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.True(t, cfg.VoiceEnabled())
}

func TestInvalidPortEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("AEROAI_PORT", "eighty")

	_, _, err := LoadWithFallback("")
	assert.ErrorContains(t, err, "invalid AEROAI_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeoutSecs = -1 }, "server timeouts"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"temperature too high", func(c *Config) { v := 2.5; c.Gemini.Temperature = &v }, "temperature"},
		{"negative max tokens", func(c *Config) { c.Gemini.MaxOutputTokens = -1 }, "max_output_tokens"},
		{"negative breaker failures", func(c *Config) { c.Gemini.BreakerMaxFailures = -1 }, "breaker_max_failures"},
		{"negative breaker open", func(c *Config) { c.Gemini.BreakerOpenSecs = -1 }, "breaker_open_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = ""
	cfg.Server.CORSAllowedOrigins = nil
	cfg.Server.ShutdownTimeoutSec = 0
	cfg.Gemini.Model = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSec)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
}
