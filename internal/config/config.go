package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"lifequest/internal/engine"
)

// Config holds all lifequest configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Auth    AuthConfig    `yaml:"auth"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures the habit/points state of each session.
type EngineConfig struct {
	LowBalanceThreshold int            `yaml:"low_balance_threshold"`
	DeletionPolicy      string         `yaml:"deletion_policy"` // keep, cascade
	Timezone            string         `yaml:"timezone"`        // IANA name; empty means local
	Catalog             engine.Catalog `yaml:"catalog"`
}

type AuthConfig struct {
	EmailDomain  string `yaml:"email_domain"`
	DatabasePath string `yaml:"database_path"`
	BcryptCost   int    `yaml:"bcrypt_cost"`
}

type ServerConfig struct {
	Addr          string  `yaml:"addr"`
	SessionTTL    string  `yaml:"session_ttl"`
	RateLimit     float64 `yaml:"rate_limit"` // requests per second per session
	RateBurst     int     `yaml:"rate_burst"`
	SweepSchedule string  `yaml:"sweep_schedule"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty means stderr; lq board logs nowhere without it
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			LowBalanceThreshold: engine.DefaultLowBalanceThreshold,
			DeletionPolicy:      string(engine.KeepCompletions),
			Catalog:             engine.DefaultCatalog(),
		},
		Auth: AuthConfig{
			EmailDomain:  "@gmail.com",
			DatabasePath: ":memory:",
			BcryptCost:   10,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			SessionTTL:    "24h",
			RateLimit:     20,
			RateBurst:     40,
			SweepSchedule: "0 0 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPath returns ~/.lifequest.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".lifequest.yaml"), nil
}

// Load reads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			// A catalog in the file replaces the built-in one rather than merging into it.
			cfg.Engine.Catalog = engine.Catalog{}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
			if cfg.Engine.Catalog.Habits == nil && cfg.Engine.Catalog.Rewards == nil {
				cfg.Engine.Catalog = engine.DefaultCatalog()
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LIFEQUEST_DB"); v != "" {
		c.Auth.DatabasePath = v
	}
	if v := os.Getenv("LIFEQUEST_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LIFEQUEST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LIFEQUEST_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate checks the configuration for values the rest of the app cannot handle.
func (c *Config) Validate() error {
	if c.Engine.LowBalanceThreshold < 0 {
		return fmt.Errorf("engine.low_balance_threshold must be >= 0")
	}
	if _, err := engine.ParseDeletionPolicy(c.Engine.DeletionPolicy); err != nil {
		return fmt.Errorf("engine.deletion_policy: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("engine.timezone: %w", err)
	}
	if err := c.Engine.Catalog.Validate(); err != nil {
		return fmt.Errorf("engine.catalog: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.SessionTTL); err != nil {
		return fmt.Errorf("server.session_ttl: %w", err)
	}
	if _, err := cron.ParseStandard(c.Server.SweepSchedule); err != nil {
		return fmt.Errorf("server.sweep_schedule: %w", err)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must be >= 0")
	}
	return nil
}

// Location resolves engine.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Engine.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Engine.Timezone)
}

func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// EngineOptions builds the per-session state options.
func (c *Config) EngineOptions() engine.Options {
	policy, _ := engine.ParseDeletionPolicy(c.Engine.DeletionPolicy)
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	return engine.Options{
		Catalog:             c.Engine.Catalog,
		LowBalanceThreshold: c.Engine.LowBalanceThreshold,
		DeletionPolicy:      policy,
		Clock:               engine.SystemClock{Location: loc},
	}
}
