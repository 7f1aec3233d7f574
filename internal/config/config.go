// Package config handles loading and managing configuration for taskvoice.
// It supports loading from YAML files, environment variables, and hardcoded defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jayphen/taskvoice/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for taskvoice.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// RedisURL selects the Redis session store. Empty keeps sessions in memory.
	RedisURL string `yaml:"redis_url"`

	// SessionTTL is how long an idle conversation is remembered
	SessionTTL time.Duration `yaml:"session_ttl"`

	Auth AuthConfig `yaml:"auth"`

	// Sources are task source specs, e.g. "todolist:path=~/tasks.md"
	Sources []string `yaml:"sources"`

	// Timezone is the IANA zone used to interpret relative dates
	Timezone string `yaml:"timezone"`

	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP webhook server.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// AuthConfig configures account-linking tokens.
type AuthConfig struct {
	// JWTSecret enables access token verification when non-empty
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LoggingConfig mirrors logging.LoggingConfig with YAML tags.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	JSON       bool   `yaml:"json"`
	Console    bool   `yaml:"console"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Default configuration values
const (
	DefaultAddr         = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultSessionTTL   = 30 * time.Minute
	DefaultIssuer       = "taskvoice"
	DefaultTokenTTL     = 30 * 24 * time.Hour
	DefaultSource       = "memory:"
	DefaultLogLevel     = "info"
)

var (
	globalConfig *Config
	configOnce   sync.Once
	configErr    error
)

// Get returns the global configuration, loading it if necessary.
// This function is safe for concurrent use.
func Get() (*Config, error) {
	configOnce.Do(func() {
		globalConfig, configErr = Load()
	})
	return globalConfig, configErr
}

// MustGet returns the global configuration, panicking if loading fails.
func MustGet() *Config {
	cfg, err := Get()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// Defaults returns the hardcoded configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		SessionTTL: DefaultSessionTTL,
		Auth: AuthConfig{
			Issuer:   DefaultIssuer,
			TokenTTL: DefaultTokenTTL,
		},
		Sources: []string{DefaultSource},
		Logging: LoggingConfig{
			Level:   DefaultLogLevel,
			Console: true,
		},
	}
}

// Load reads configuration from files and environment variables.
// Priority (highest to lowest):
// 1. Environment variables
// 2. ~/.config/taskvoice/config.yaml (or config.yml)
// 3. ~/.taskvoice.yaml
// 4. Hardcoded defaults
func Load() (*Config, error) {
	cfg := Defaults()

	// Later paths override earlier ones.
	paths := ConfigPaths()
	for i := len(paths) - 1; i >= 0; i-- {
		data, err := os.ReadFile(paths[i])
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", paths[i], err)
		}
	}

	// Override with environment variables (highest priority)
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be fixed up with a default.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); c.Logging.Level != "" && err != nil {
		return err
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	return nil
}

// Location resolves Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LogConfig converts the logging section for logging.InitFromLogConfig.
func (c *Config) LogConfig() logging.LoggingConfig {
	return logging.LoggingConfig{
		Level:      c.Logging.Level,
		FilePath:   c.Logging.File,
		JSON:       c.Logging.JSON,
		Console:    c.Logging.Console,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Compress:   c.Logging.Compress,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvOverrides() {
	if val := os.Getenv("TASKVOICE_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("TASKVOICE_ALLOWED_ORIGINS"); val != "" {
		c.Server.AllowedOrigins = splitList(val, ",")
	}
	envDuration("TASKVOICE_READ_TIMEOUT", &c.Server.ReadTimeout)
	envDuration("TASKVOICE_WRITE_TIMEOUT", &c.Server.WriteTimeout)

	// Redis URL (support both REDIS_URL and TASKVOICE_REDIS_URL)
	if val := os.Getenv("TASKVOICE_REDIS_URL"); val != "" {
		c.RedisURL = val
	} else if val := os.Getenv("REDIS_URL"); val != "" {
		c.RedisURL = val
	}
	envDuration("TASKVOICE_SESSION_TTL", &c.SessionTTL)

	if val := os.Getenv("TASKVOICE_JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}
	if val := os.Getenv("TASKVOICE_AUTH_ISSUER"); val != "" {
		c.Auth.Issuer = val
	}
	envDuration("TASKVOICE_TOKEN_TTL", &c.Auth.TokenTTL)

	// Source specs contain commas, so the list separator is ';'
	if val := os.Getenv("TASKVOICE_SOURCES"); val != "" {
		c.Sources = splitList(val, ";")
	}
	if val := os.Getenv("TASKVOICE_TIMEZONE"); val != "" {
		c.Timezone = val
	}

	if val := os.Getenv("TASKVOICE_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("TASKVOICE_LOG_FILE"); val != "" {
		c.Logging.File = val
	}
	if val := os.Getenv("TASKVOICE_LOG_JSON"); val != "" {
		c.Logging.JSON = truthy(val)
	}
}

func envDuration(key string, dst *time.Duration) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	if d, err := time.ParseDuration(val); err == nil {
		*dst = d
	} else if secs, err := strconv.Atoi(val); err == nil {
		// Support plain seconds for convenience
		*dst = time.Duration(secs) * time.Second
	}
}

func splitList(val, sep string) []string {
	var out []string
	for _, part := range strings.Split(val, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truthy(val string) bool {
	return val == "true" || val == "1" || val == "yes"
}

// Reload forces a reload of the configuration.
// This resets the global singleton and returns the newly loaded config.
func Reload() (*Config, error) {
	configOnce = sync.Once{}
	return Get()
}

// ConfigPaths returns the paths where config files are searched, highest
// priority first.
func ConfigPaths() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(homeDir, ".config", "taskvoice", "config.yaml"),
		filepath.Join(homeDir, ".config", "taskvoice", "config.yml"),
		filepath.Join(homeDir, ".taskvoice.yaml"),
	}
}

// WriteExample writes an example configuration file to the specified path.
func WriteExample(path string) error {
	example := `# taskvoice configuration file
# Place this file at ~/.config/taskvoice/config.yaml or ~/.taskvoice.yaml

server:
  addr: ":8080"
  allowed_origins: []
  read_timeout: 10s
  write_timeout: 10s

# Redis connection URL for conversation state (empty keeps it in memory)
redis_url: ""

# How long an idle conversation is remembered (Go duration format)
session_ttl: 30m

# Account linking. Leave jwt_secret empty to accept unlinked requests.
auth:
  jwt_secret: ""
  issuer: taskvoice
  token_ttl: 720h

# Task sources, first one receives new tasks
#   memory:
#   todolist:path=~/tasks.md
#   docstore:path=~/.taskvoice/tasks
#   postgres:dsn=postgres://localhost/taskvoice?sslmode=disable
#   remote:url=https://api.example.com/v1,database=<id>,token=<token>
sources:
  - "memory:"

# IANA time zone for "tomorrow", "this week" and friends
timezone: ""

logging:
  level: info
  file: ""
  json: false
  console: true
`
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(example), 0644)
}
