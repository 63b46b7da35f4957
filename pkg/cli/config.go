package cli

import (
	"fmt"
	"strconv"
	"strings"

	"scrapectl/pkg/config"

	"github.com/pelletier/go-toml/v2"
)

// ShowConfig displays the current configuration
func (a *App) ShowConfig() error {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

// SetConfig sets a configuration value
// Format: section.key=value (e.g., "scraper.base_url=http://localhost:8000")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	keyPath := strings.Split(parts[0], ".")
	value := parts[1]

	if len(keyPath) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}

	section := keyPath[0]
	key := keyPath[1]

	switch section {
	case "scraper":
		switch key {
		case "base_url":
			a.cfg.Scraper.BaseURL = value
		case "timeout":
			timeout, err := positiveInt(key, value)
			if err != nil {
				return err
			}
			a.cfg.Scraper.Timeout = timeout
		default:
			return fmt.Errorf("unknown scraper key: %s", key)
		}
	case "history":
		switch key {
		case "backend":
			if value != config.BackendFile && value != config.BackendPostgres {
				return fmt.Errorf("invalid backend value: %s (want %s or %s)", value, config.BackendFile, config.BackendPostgres)
			}
			a.cfg.History.Backend = value
		case "path":
			a.cfg.History.Path = value
		case "database_url":
			a.cfg.History.DatabaseURL = value
		case "key":
			a.cfg.History.Key = value
		default:
			return fmt.Errorf("unknown history key: %s", key)
		}
	case "api":
		switch key {
		case "host":
			a.cfg.API.Host = value
		case "port":
			port, err := positiveInt(key, value)
			if err != nil {
				return err
			}
			a.cfg.API.Port = port
		case "api_key":
			a.cfg.API.APIKey = value
		default:
			return fmt.Errorf("unknown api key: %s", key)
		}
	case "log":
		switch key {
		case "file":
			a.cfg.Log.File = value
		case "level":
			a.cfg.Log.Level = value
		default:
			return fmt.Errorf("unknown log key: %s", key)
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}

	return config.Save(a.cfg)
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value: %s", key, value)
	}
	return n, nil
}
