// Package config provides configuration for the chat client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env is the build configuration the client runs under.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
)

// Fixture sources.
const (
	FixtureSourceEmbedded = "embedded"
	FixtureSourceHTTP     = "http"
)

// Config holds the chat client configuration.
type Config struct {
	// Build configuration; development enables the mock layer and the
	// scripted stream.
	Env Env `yaml:"env"`

	// Backend
	BaseURL     string        `yaml:"base_url"`
	APIPrefix   string        `yaml:"api_prefix"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Fixtures
	FixtureSource string `yaml:"fixture_source"`
	FixtureRoot   string `yaml:"fixture_root"`

	// Simulated stream pacing
	StreamStartup  time.Duration `yaml:"stream_startup"`
	StreamInterval time.Duration `yaml:"stream_interval"`

	// Credentials
	TokenFile string `yaml:"token_file"`

	// Mock layer
	MockPolicyFile string `yaml:"mock_policy_file"`
	SessionDB      string `yaml:"session_db"`
	MockPort       int    `yaml:"mock_port"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Env:            Env(getEnv("CHATCLIENT_ENV", string(EnvDevelopment))),
		BaseURL:        getEnv("CHATCLIENT_BASE_URL", "http://localhost:8080"),
		APIPrefix:      getEnv("CHATCLIENT_API_PREFIX", "/api/v1"),
		HTTPTimeout:    time.Duration(getEnvInt("CHATCLIENT_HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,
		FixtureSource:  getEnv("CHATCLIENT_FIXTURE_SOURCE", FixtureSourceEmbedded),
		FixtureRoot:    getEnv("CHATCLIENT_FIXTURE_ROOT", "/mock"),
		StreamStartup:  time.Duration(getEnvInt("CHATCLIENT_STREAM_STARTUP_MS", 500)) * time.Millisecond,
		StreamInterval: time.Duration(getEnvInt("CHATCLIENT_STREAM_INTERVAL_MS", 100)) * time.Millisecond,
		TokenFile:      getEnv("CHATCLIENT_TOKEN_FILE", defaultTokenFile()),
		MockPolicyFile: getEnv("CHATCLIENT_MOCK_POLICY_FILE", ""),
		SessionDB:      getEnv("CHATCLIENT_SESSION_DB", ""),
		MockPort:       getEnvInt("CHATCLIENT_MOCK_PORT", 8080),
		LogLevel:       getEnv("CHATCLIENT_LOG_LEVEL", "info"),
		LogFormat:      getEnv("CHATCLIENT_LOG_FORMAT", "console"),
		LogFile:        getEnv("CHATCLIENT_LOG_FILE", ""),
	}
}

// LoadFile loads configuration from the environment and overlays the YAML
// file at path. Keys missing from the file keep their environment value.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("env must be one of: development, production; got: %s", c.Env)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with '/', got: %s", c.APIPrefix)
	}
	switch c.FixtureSource {
	case FixtureSourceEmbedded, FixtureSourceHTTP:
	default:
		return fmt.Errorf("fixture_source must be one of: embedded, http; got: %s", c.FixtureSource)
	}
	if c.StreamStartup < 0 {
		return fmt.Errorf("stream_startup must not be negative")
	}
	if c.StreamInterval <= 0 {
		return fmt.Errorf("stream_interval must be positive")
	}
	if c.MockPort < 1 || c.MockPort > 65535 {
		return fmt.Errorf("mock_port must be between 1 and 65535, got: %d", c.MockPort)
	}
	return nil
}

// IsDevelopment reports whether the mock layer and scripted stream are active.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// APIURL joins the base URL, API prefix and path.
func (c *Config) APIURL(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.APIPrefix + path
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".chatclient", "token")
	}
	return filepath.Join(home, ".chatclient", "token")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
