// Package config provides unified configuration loading for the context engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the context engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Relevance     RelevanceConfig     `yaml:"relevance"`
	Observability ObservabilityConfig `yaml:"observability"`
	Auth          AuthConfig          `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	JournalMode  string `yaml:"journal_mode"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AnalysisConfig holds content-analysis tuning.
type AnalysisConfig struct {
	MinClassifyMatches    int `yaml:"min_classify_matches"`
	MaxRank               int `yaml:"max_rank"`
	MinCaptureChars       int `yaml:"min_capture_chars"`
	ReasonRadius          int `yaml:"reason_radius"`
	WinnerReasonRadius    int `yaml:"winner_reason_radius"`
	MaxKeywords           int `yaml:"max_keywords"`
	MaxPrimaryProducts    int `yaml:"max_primary_products"`
	RankedPrimaryProducts int `yaml:"ranked_primary_products"`
	MaxProductNameChars   int `yaml:"max_product_name_chars"`
}

// RelevanceConfig holds context-selection tuning.
type RelevanceConfig struct {
	MaxItems       int     `yaml:"max_items"`
	RelevanceFloor float64 `yaml:"relevance_floor"`
	MaxScore       float64 `yaml:"max_score"`
	PreviewChars   int     `yaml:"preview_chars"`
	ContentChars   int     `yaml:"content_chars"`
	CacheResults   bool    `yaml:"cache_results"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "/tmp/context-engine.db",
				MaxOpenConns: 1,
				JournalMode:  "WAL",
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Analysis: AnalysisConfig{
			MinClassifyMatches:    2,
			MaxRank:               20,
			MinCaptureChars:       4,
			ReasonRadius:          100,
			WinnerReasonRadius:    150,
			MaxKeywords:           20,
			MaxPrimaryProducts:    10,
			RankedPrimaryProducts: 5,
			MaxProductNameChars:   100,
		},
		Relevance: RelevanceConfig{
			MaxItems:       7,
			RelevanceFloor: 0.1,
			MaxScore:       3.0,
			PreviewChars:   500,
			ContentChars:   1000,
			CacheResults:   true,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "debug",
			LogFormat:   "json",
			ServiceName: "context-engine",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Relevance.MaxItems < 1 || c.Relevance.MaxItems > 50 {
		return fmt.Errorf("max_items must be between 1 and 50")
	}

	if c.Relevance.RelevanceFloor < 0 {
		return fmt.Errorf("relevance_floor must not be negative")
	}

	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth enabled without an api_key")
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Database.Driver == "sqlite" || !c.Auth.Enabled
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Database.Postgres.DSN = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		// Parse redis://host:port format
		addr := strings.TrimPrefix(v, "redis://")
		cfg.Cache.Redis.Addr = addr
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.APIKey = v
	}

	if v := os.Getenv("MAX_CONTEXT_ITEMS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Relevance.MaxItems = n
		}
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}
