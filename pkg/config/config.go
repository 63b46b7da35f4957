package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// Scraper
	Scraper struct {
		BaseURL string `toml:"base_url"` // Root of the remote extraction service
		Timeout int    `toml:"timeout"`  // Per-request timeout in seconds
	} `toml:"scraper"`

	// History
	History struct {
		Backend     string `toml:"backend"` // "file" or "postgres"
		Path        string `toml:"path"`
		DatabaseURL string `toml:"database_url"`
		Key         string `toml:"key"`
	} `toml:"history"`

	// API
	API struct {
		Port   int    `toml:"port"`
		Host   string `toml:"host"`
		APIKey string `toml:"api_key"` // Empty disables auth
	} `toml:"api"`

	// Log
	Log struct {
		File       string `toml:"file"`
		Level      string `toml:"level"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups"`
		MaxAgeDays int    `toml:"max_age_days"`
	} `toml:"log"`
}

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// dir is overridable so tests never touch the real home directory.
var dir = ""

// ConfigDir returns the directory holding config, history and logs.
func ConfigDir() (string, error) {
	if dir != "" {
		return dir, nil
	}
	if d := os.Getenv("SCRAPECTL_CONFIG_DIR"); d != "" {
		return d, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "scrapectl"), nil
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Scraper.BaseURL = "https://backend-f7q7.onrender.com"
	cfg.Scraper.Timeout = 60
	cfg.History.Backend = BackendFile
	cfg.History.Key = "scrapingHistory"
	cfg.API.Port = 8080
	cfg.API.Host = "127.0.0.1"
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28

	if d, err := ConfigDir(); err == nil {
		cfg.History.Path = filepath.Join(d, "history.json")
		cfg.Log.File = filepath.Join(d, "logs", "scrapectl.log")
	}
	return cfg
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.toml"), nil
}

// Load reads configuration from ~/.config/scrapectl/config.toml
// Creates the file with defaults if it doesn't exist
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		applyEnv(cfg)
		return cfg, nil
	}

	// Read existing config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// mergeDefaults fills any missing values from DefaultConfig.
func mergeDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = def.Scraper.BaseURL
	}
	if cfg.Scraper.Timeout <= 0 {
		cfg.Scraper.Timeout = def.Scraper.Timeout
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = def.History.Backend
	}
	if cfg.History.Path == "" {
		cfg.History.Path = def.History.Path
	}
	if cfg.History.Key == "" {
		cfg.History.Key = def.History.Key
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = def.API.Port
	}
	if cfg.API.Host == "" {
		cfg.API.Host = def.API.Host
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = def.Log.MaxBackups
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = def.Log.MaxAgeDays
	}
}

// Override with environment variables if set (useful for Docker)
func applyEnv(cfg *Config) {
	if baseURL := os.Getenv("SCRAPER_BASE_URL"); baseURL != "" {
		cfg.Scraper.BaseURL = baseURL
	}
	if dbURL := os.Getenv("HISTORY_DATABASE_URL"); dbURL != "" {
		cfg.History.DatabaseURL = dbURL
	}
}

// Save writes the configuration to the config file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ScrapeTimeout returns the per-request timeout.
func (c *Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scraper.Timeout) * time.Second
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case BackendFile:
		if c.History.Path == "" {
			return fmt.Errorf("history.path is required for the file backend")
		}
	case BackendPostgres:
		if c.History.DatabaseURL == "" {
			return fmt.Errorf("history.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown history.backend %q (want %q or %q)", c.History.Backend, BackendFile, BackendPostgres)
	}
	if !strings.HasPrefix(c.Scraper.BaseURL, "http://") && !strings.HasPrefix(c.Scraper.BaseURL, "https://") {
		return fmt.Errorf("scraper.base_url must be an http(s) URL, got %q", c.Scraper.BaseURL)
	}
	return nil
}
