// Package config loads the intake configuration from an optional YAML or JSON
// file, a .env file and INTAKE_* environment variables, in that order of precedence.
package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvEngineURL     = "INTAKE_ENGINE_URL"
	EnvEngineTimeout = "INTAKE_ENGINE_TIMEOUT"
	EnvPort          = "INTAKE_PORT"
	EnvStore         = "INTAKE_STORE"
	EnvRedisAddr     = "INTAKE_REDIS_ADDR"
	EnvSQLitePath    = "INTAKE_SQLITE_PATH"
	EnvStoreKey      = "INTAKE_STORE_KEY"
	EnvLogLevel      = "INTAKE_LOG_LEVEL"
	EnvLogFormat     = "INTAKE_LOG_FORMAT"
)

// Duration is a time.Duration written as "15s" in config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds all application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine" json:"engine"`
	Server ServerConfig `yaml:"server" json:"server"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// EngineConfig addresses the remote workflow engine.
type EngineConfig struct {
	URL            string   `yaml:"url" json:"url"`
	Timeout        Duration `yaml:"timeout" json:"timeout"`
	GetSessionPath string   `yaml:"get_session_path" json:"get_session_path"`
	ChangeChatPath string   `yaml:"change_chat_path" json:"change_chat_path"`
	// EncodeNested makes the local engine reply with JSON-encoded answers.
	EncodeNested bool `yaml:"encode_nested" json:"encode_nested"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Port        string `yaml:"port" json:"port"`
	MetricsPath string `yaml:"metrics_path" json:"metrics_path"`
}

// StoreConfig selects the record store of the local engine.
type StoreConfig struct {
	Driver     string      `yaml:"driver" json:"driver"`
	SQLitePath string      `yaml:"sqlite_path" json:"sqlite_path"`
	Redis      RedisConfig `yaml:"redis" json:"redis"`
	// EncryptionKey is a hex encoded AES-256 key. Records are stored in plain text when empty.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	// FallbackKeys are retired hex encoded keys still accepted for reading.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// RedisConfig configures the Redis store and locker.
type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns a configuration usable with no file and no environment.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Timeout: Duration(15 * time.Second),
		},
		Server: ServerConfig{
			Port:        "8080",
			MetricsPath: "/metrics",
		},
		Store: StoreConfig{
			Driver:     StoreMemory,
			SQLitePath: "./data/intake.db",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "intake:session:",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if not empty), applies environment overrides and validates the result.
// An explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Engine.URL, EnvEngineURL)
	setString(&c.Server.Port, EnvPort)
	setString(&c.Store.Driver, EnvStore)
	setString(&c.Store.Redis.Addr, EnvRedisAddr)
	setString(&c.Store.SQLitePath, EnvSQLitePath)
	setString(&c.Store.EncryptionKey, EnvStoreKey)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)

	if v, ok := os.LookupEnv(EnvEngineTimeout); ok && strings.TrimSpace(v) != "" {
		if err := c.Engine.Timeout.UnmarshalText([]byte(v)); err != nil {
			// Bare numbers are seconds.
			secs, convErr := strconv.Atoi(strings.TrimSpace(v))
			if convErr != nil {
				return fmt.Errorf("%s: %w", EnvEngineTimeout, err)
			}
			c.Engine.Timeout = Duration(time.Duration(secs) * time.Second)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine timeout must be > 0, got %s", time.Duration(c.Engine.Timeout))
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("redis store requires an address")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite store requires a path")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if _, _, err := c.Store.Keys(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// EngineTimeout returns the engine timeout as a time.Duration.
func (c *Config) EngineTimeout() time.Duration {
	return time.Duration(c.Engine.Timeout)
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Server.Port, ":") {
		return c.Server.Port
	}
	return ":" + c.Server.Port
}

// TTLDuration returns the record TTL as a time.Duration. Zero means no expiry.
func (r RedisConfig) TTLDuration() time.Duration {
	return time.Duration(r.TTL)
}

// Keys decodes the encryption keys. active is nil when encryption is disabled.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, errors.New("fallback keys require an encryption key")
		}
		return nil, nil, nil
	}
	if active, err = decodeKey(s.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
