// Package common provides shared utilities for Finote
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Finote
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Backend     BackendConfig `toml:"backend"`
	Series      SeriesConfig  `toml:"series"`
	Mock        MockConfig    `toml:"mock"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BackendConfig points at the dashboard backend that owns the portfolio data.
type BackendConfig struct {
	BaseURL       string `toml:"base_url"`
	SessionCookie string `toml:"session_cookie"` // forwarded as the "sessionid" cookie
	RateLimit     int    `toml:"rate_limit"`
	Timeout       string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BackendConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SeriesConfig controls where chart series come from and the request defaults.
type SeriesConfig struct {
	Source        string `toml:"source"`   // "backend" or "mock"
	Timezone      string `toml:"timezone"` // IANA name used for "today"; empty means local time
	DefaultPeriod string `toml:"default_period"`
	DefaultRange  int    `toml:"default_range"`
	CacheTTL      string `toml:"cache_ttl"` // serve stored snapshots younger than this without refetching

	// WarmAssetTypes are loaded at server startup so the first chart is served
	// from a snapshot. "all" means the unfiltered portfolio.
	WarmAssetTypes []string `toml:"warm_asset_types"`
}

// GetCacheTTL parses CacheTTL. Zero disables serving from cache.
func (c *SeriesConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Location resolves Timezone, falling back to time.Local.
func (c *SeriesConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MockConfig configures the synthetic placeholder series.
type MockConfig struct {
	Seed      uint64  `toml:"seed"`
	BaseValue float64 `toml:"base_value"`
	Days      int     `toml:"days"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "file", "sqlite" or "surrealdb"
	Path      string `toml:"path"`    // directory for file, database file for sqlite
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Source values for SeriesConfig.Source
const (
	SourceBackend = "backend"
	SourceMock    = "mock"
)

// Backend values for StorageConfig.Backend
const (
	StorageFile      = "file"
	StorageSQLite    = "sqlite"
	StorageSurrealDB = "surrealdb"
)

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL:   "http://localhost:8000",
			RateLimit: 5,
			Timeout:   "15s",
		},
		Series: SeriesConfig{
			Source:         SourceMock,
			DefaultPeriod:  "1D",
			DefaultRange:   30,
			WarmAssetTypes: []string{"all"},
		},
		Mock: MockConfig{
			Seed:      42,
			BaseValue: 22000,
			Days:      5 * 365,
		},
		Storage: StorageConfig{
			Backend:   StorageFile,
			Path:      "data/series",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "finote",
			Database:  "finote",
			Username:  "root",
			Password:  "root",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Outputs:    []string{"console"},
			FilePath:   "./logs/finote.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validate(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINOTE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINOTE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINOTE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINOTE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("FINOTE_BACKEND_URL"); v != "" {
		config.Backend.BaseURL = v
	}
	if v := os.Getenv("FINOTE_BACKEND_SESSION"); v != "" {
		config.Backend.SessionCookie = v
	}

	if v := os.Getenv("FINOTE_SERIES_SOURCE"); v != "" {
		config.Series.Source = strings.ToLower(v)
	}
	if v := os.Getenv("FINOTE_TIMEZONE"); v != "" {
		config.Series.Timezone = v
	}

	if v := os.Getenv("FINOTE_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("FINOTE_DATA_PATH"); v != "" {
		config.Storage.Path = filepath.Clean(v)
	}
	if v := os.Getenv("FINOTE_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
}

// validate resets enum fields to their defaults when they hold unknown values.
func validate(config *Config) {
	defaults := NewDefaultConfig()

	switch strings.ToLower(config.Series.Source) {
	case SourceBackend, SourceMock:
		config.Series.Source = strings.ToLower(config.Series.Source)
	default:
		config.Series.Source = defaults.Series.Source
	}

	switch strings.ToLower(config.Storage.Backend) {
	case StorageFile, StorageSQLite, StorageSurrealDB:
		config.Storage.Backend = strings.ToLower(config.Storage.Backend)
	default:
		config.Storage.Backend = defaults.Storage.Backend
	}

	if config.Series.DefaultRange <= 0 {
		config.Series.DefaultRange = defaults.Series.DefaultRange
	}
	if config.Mock.Days <= 0 {
		config.Mock.Days = defaults.Mock.Days
	}
	if config.Mock.BaseValue <= 0 {
		config.Mock.BaseValue = defaults.Mock.BaseValue
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
