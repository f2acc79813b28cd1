package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server  ServerConfig  `toml:"server"`  // HTTP server settings
	Logging LoggingConfig `toml:"logging"` // Application logging settings
	Gemini  GeminiConfig  `toml:"gemini"`  // Voice assistant model settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                     // HTTP port for the server
	Host               string   `toml:"host"`                     // Host address to bind to (0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`     // Origins allowed for CORS requests (["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`     // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"`    // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`     // Maximum keep-alive idle time
	ShutdownTimeoutSec int      `toml:"shutdown_timeout_seconds"` // Grace period for in-flight requests on shutdown
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// GeminiConfig contains the voice assistant model configuration.
// An empty APIKey puts the voice assistant in offline mode for the process lifetime.
type GeminiConfig struct {
	APIKey             string   `toml:"api_key"`              // Gemini Developer API key
	Model              string   `toml:"model"`                // Model name (e.g., "gemini-1.5-flash")
	Temperature        *float64 `toml:"temperature"`          // Sampling temperature, 0-2 (unset keeps the model default)
	MaxOutputTokens    int      `toml:"max_output_tokens"`    // Reply length cap (0 keeps the model default)
	BreakerMaxFailures int      `toml:"breaker_max_failures"` // Consecutive failures before calls fail fast
	BreakerOpenSecs    int      `toml:"breaker_open_seconds"` // Seconds the breaker stays open before probing
}

// envOverlay lists the environment variables read at startup.
// An empty variable counts as unset.
type envOverlay struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	Port         string `envconfig:"AEROAI_PORT"`
	Host         string `envconfig:"AEROAI_HOST"`
	LogLevel     string `envconfig:"AEROAI_LOG_LEVEL"`
}

// Default returns the configuration used when no config file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8000,
			Host:               "0.0.0.0",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSecs:    15,
			WriteTimeoutSecs:   60,
			IdleTimeoutSecs:    120,
			ShutdownTimeoutSec: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Gemini: GeminiConfig{
			Model:              "gemini-1.5-flash",
			BreakerMaxFailures: 5,
			BreakerOpenSecs:    30,
		},
	}
}

// Load loads the configuration from the specified file path on top of the defaults
func Load(path string) (*Config, error) {
	config := Default()

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference.
// When none of them exists the defaults are used. Environment overrides are applied last.
func LoadWithFallback(preferredPath string) (*Config, string, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// An explicitly requested file must exist
	if preferredPath != "" {
		if _, err := os.Stat(preferredPath); err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", preferredPath)
		}
	}

	config := Default()
	usedPath := ""

	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		if _, err := os.Stat(path); err != nil {
			continue
		}
		loaded, err := Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		config = loaded
		usedPath = path
		break
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, "", err
	}

	return config, usedPath, nil
}

// ApplyEnv loads a .env file if present and overlays environment variables.
// Variables that are unset or empty leave the current values untouched.
func (c *Config) ApplyEnv() error {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	var env envOverlay
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.GeminiAPIKey != "" {
		c.Gemini.APIKey = env.GeminiAPIKey
	}
	if env.Port != "" {
		port, err := strconv.Atoi(env.Port)
		if err != nil {
			return fmt.Errorf("invalid AEROAI_PORT %q: %w", env.Port, err)
		}
		c.Server.Port = port
	}
	if env.Host != "" {
		c.Server.Host = env.Host
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	return nil
}

// VoiceEnabled reports whether the voice assistant has a model collaborator
func (c *Config) VoiceEnabled() bool {
	return c.Gemini.APIKey != ""
}

// Validate validates the configuration and fills unset values with defaults
func (c *Config) Validate() error {
	defaults := Default()

	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = defaults.Server.CORSAllowedOrigins
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must be 0 or greater")
	}
	if c.Server.ShutdownTimeoutSec <= 0 {
		c.Server.ShutdownTimeoutSec = defaults.Server.ShutdownTimeoutSec
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Validate Gemini config
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaults.Gemini.Model
	}
	if t := c.Gemini.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("gemini temperature must be between 0 and 2: %g", *t)
	}
	if c.Gemini.MaxOutputTokens < 0 {
		return fmt.Errorf("gemini max_output_tokens must be 0 or greater: %d", c.Gemini.MaxOutputTokens)
	}
	if c.Gemini.BreakerMaxFailures < 0 {
		return fmt.Errorf("gemini breaker_max_failures must be 0 or greater: %d", c.Gemini.BreakerMaxFailures)
	}
	if c.Gemini.BreakerOpenSecs < 0 {
		return fmt.Errorf("gemini breaker_open_seconds must be 0 or greater: %d", c.Gemini.BreakerOpenSecs)
	}

	if !c.VoiceEnabled() {
		fmt.Printf("WARN: No Gemini API key provided - voice assistant will run in offline mode\n")
	}

	return nil
}
