package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the complete tradestats configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Refresh RefreshConfig `json:"refresh" yaml:"refresh"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// AccountConfig holds the reference balance the equity curve starts from
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
	Timezone string  `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name for hour/day buckets
}

// JournalConfig says where trades are read from
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig controls zap output
type LogConfig struct {
	Level    string `json:"level" yaml:"level"`       // debug | info | warn | error
	Encoding string `json:"encoding" yaml:"encoding"` // console | json
}

// RefreshConfig bounds how often a report is recomputed
type RefreshConfig struct {
	Schedule    string `json:"schedule" yaml:"schedule"`         // cron expression, e.g. "@every 1m"
	MinInterval string `json:"min_interval" yaml:"min_interval"` // e.g. "5s"
	CacheTTL    string `json:"cache_ttl" yaml:"cache_ttl"`       // e.g. "10m"
}

// ServerConfig is the HTTP read API
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// MinIntervalDuration parses Refresh.MinInterval.
func (c *Config) MinIntervalDuration() (time.Duration, error) {
	d, err := parseDuration(c.Refresh.MinInterval)
	if err != nil {
		return 0, fmt.Errorf("parse refresh.min_interval: %w", err)
	}
	return d, nil
}

// CacheTTLDuration parses Refresh.CacheTTL.
func (c *Config) CacheTTLDuration() (time.Duration, error) {
	d, err := parseDuration(c.Refresh.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("parse refresh.cache_ttl: %w", err)
	}
	return d, nil
}

// Location resolves Account.Timezone. An empty timezone yields nil, meaning
// timestamps keep their own location.
func (c *Config) Location() (*time.Location, error) {
	if c.Account.Timezone == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Account.Timezone)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Load reads path when given, otherwise starts from Default. Either way .env
// and environment overrides apply and the result is validated.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}

	cfg := Default()
	_ = godotenv.Load()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON),
// then applies .env and environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// A missing .env is fine.
	_ = godotenv.Load()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TRADESTATS_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("TRADESTATS_DB"); v != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("TRADESTATS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TRADESTATS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TRADESTATS_BALANCE"); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRADESTATS_BALANCE: %w", err)
		}
		cfg.Account.Balance = b
	}
	return nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if math.IsNaN(c.Account.Balance) || math.IsInf(c.Account.Balance, 0) || c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("account.timezone: %w", err)
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.TradesFile == "" {
		return fmt.Errorf("journal trades_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error")
	}
	if c.Refresh.Schedule != "" {
		if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("refresh.schedule: %w", err)
		}
	}
	if d, err := c.MinIntervalDuration(); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("refresh.min_interval must be a non-negative duration")
	}
	if d, err := c.CacheTTLDuration(); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("refresh.cache_ttl must be a non-negative duration")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "PROP-001",
			Currency: "USD",
			Balance:  100000,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./tradestats.sqlite",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Refresh: RefreshConfig{
			Schedule:    "@every 1m",
			MinInterval: "5s",
			CacheTTL:    "10m",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
