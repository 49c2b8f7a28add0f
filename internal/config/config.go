// Package config loads daybook settings from an XDG config file with
// DAYBOOK_* environment overrides on top of compiled-in defaults.
package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Journal JournalConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StorageConfig struct {
	DataDir   string
	StaticDir string
}

type JournalConfig struct {
	// RecentCount is how many entries the index page shows.
	RecentCount int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8712,
		},
		Storage: StorageConfig{
			DataDir:   defaultDataDir(),
			StaticDir: "./static",
		},
		Journal: JournalConfig{
			RecentCount: 8,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "daybook-data"
		}
	}
	return filepath.Join(dir, "daybook")
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/daybook/config.json (when present) and applies
// DAYBOOK_* environment overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyBackend(cfg *Config, b backend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return err
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return err
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}
