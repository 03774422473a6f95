// Package config loads application configuration from environment variables.
// All variables use the AMF_ prefix. An optional YAML file named by
// AMF_CONFIG_FILE overrides the environment for the same settings.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Bank     BankConfig
	State    StateConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Sizes    SizesConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// BankConfig holds question workbook settings.
type BankConfig struct {
	Path    string // xlsx workbook with the question sheet
	Sheet   string
	DataDir string // where imported workbooks are stored
}

// StateConfig selects the progress store backend.
type StateConfig struct {
	Backend string // "file" or "postgres"
	Dir     string // state directory for the file backend
}

// DatabaseConfig holds PostgreSQL connection settings (postgres backend).
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// question table cache.
type CacheConfig struct {
	URL string
}

// SizesConfig holds the session batch sizes.
type SizesConfig struct {
	Quiz        int // exam mode question count
	Batch       int // sequential mode batch size
	SprintBatch int // questions per sprint mini-batch
	SprintCount int // mini-batches per sprint
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with AMF_ prefix,
// then applies the optional YAML overlay named by AMF_CONFIG_FILE.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("AMF_SERVER_PORT", 8080),
			Host: envStr("AMF_SERVER_HOST", "0.0.0.0"),
		},
		Bank: BankConfig{
			Path:    envStr("AMF_BANK_PATH", "AMF.xlsx"),
			Sheet:   envStr("AMF_BANK_SHEET", "V4"),
			DataDir: envStr("AMF_BANK_DATA_DIR", "./data"),
		},
		State: StateConfig{
			Backend: envStr("AMF_STATE_BACKEND", "file"),
			Dir:     envStr("AMF_STATE_DIR", "./state"),
		},
		Database: DatabaseConfig{
			URL:      envStr("AMF_DATABASE_URL", ""),
			MaxConns: envInt("AMF_DATABASE_MAX_CONNS", 5),
			MinConns: envInt("AMF_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("AMF_CACHE_URL", ""),
		},
		Sizes: SizesConfig{
			Quiz:        envInt("AMF_SIZE_QUIZ", 84),
			Batch:       envInt("AMF_SIZE_BATCH", 20),
			SprintBatch: envInt("AMF_SIZE_SPRINT_BATCH", 2),
			SprintCount: envInt("AMF_SIZE_SPRINT_COUNT", 7),
		},
		Log: LogConfig{
			Level:  envStr("AMF_LOG_LEVEL", "info"),
			Format: envStr("AMF_LOG_FORMAT", "json"),
		},
	}

	if path := os.Getenv("AMF_CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("AMF_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Bank.Sheet == "" {
		return fmt.Errorf("AMF_BANK_SHEET must not be empty")
	}
	switch c.State.Backend {
	case "file":
		if c.State.Dir == "" {
			return fmt.Errorf("AMF_STATE_DIR is required for the file backend")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("AMF_DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("AMF_STATE_BACKEND must be 'file' or 'postgres', got %q", c.State.Backend)
	}
	if c.Sizes.Quiz <= 0 || c.Sizes.Batch <= 0 || c.Sizes.SprintBatch <= 0 || c.Sizes.SprintCount <= 0 {
		return fmt.Errorf("session sizes must be positive")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
