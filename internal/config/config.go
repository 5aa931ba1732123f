package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidProvider = errors.New("invalid default provider")
	ErrMissingKey      = errors.New("no access key configured for provider")
)

// Provider names accepted by DefaultProvider and the --provider flag.
const (
	ProviderUnsplash = "unsplash"
	ProviderPexels   = "pexels"
	ProviderPixabay  = "pixabay"
	ProviderMock     = "mock"
)

type Config struct {
	Unsplash ProviderConfig `yaml:"unsplash"`
	Pexels   ProviderConfig `yaml:"pexels"`
	Pixabay  ProviderConfig `yaml:"pixabay"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type ProviderConfig struct {
	AccessKey string `yaml:"access_key"`
	BaseURL   string `yaml:"base_url"`
}

type SearchConfig struct {
	DefaultProvider string        `yaml:"default_provider"`
	Timeout         time.Duration `yaml:"-"`
	TimeoutSec      int           `yaml:"timeout_sec"`
	UserAgent       string        `yaml:"user_agent"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load resolves configuration for the CLI and server: an optional YAML file
// first, then environment variables on top. The search core itself never
// reads ambient state; whatever Load resolves is passed in as arguments.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := configFilePath(); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configFilePath() string {
	path := os.Getenv("PIXQUERY_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, ".config", "pixquery", "config.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Unsplash.AccessKey = getEnvOrDefault("UNSPLASH_ACCESS_KEY", cfg.Unsplash.AccessKey)
	cfg.Unsplash.BaseURL = getEnvOrDefault("UNSPLASH_BASE_URL", cfg.Unsplash.BaseURL)
	cfg.Pexels.AccessKey = getEnvOrDefault("PEXELS_API_KEY", cfg.Pexels.AccessKey)
	cfg.Pexels.BaseURL = getEnvOrDefault("PEXELS_BASE_URL", cfg.Pexels.BaseURL)
	cfg.Pixabay.AccessKey = getEnvOrDefault("PIXABAY_API_KEY", cfg.Pixabay.AccessKey)
	cfg.Pixabay.BaseURL = getEnvOrDefault("PIXABAY_BASE_URL", cfg.Pixabay.BaseURL)

	cfg.Search.DefaultProvider = getEnvOrDefault("DEFAULT_PROVIDER", cfg.Search.DefaultProvider)
	cfg.Search.TimeoutSec = getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", cfg.Search.TimeoutSec)
	cfg.Search.UserAgent = getEnvOrDefault("SEARCH_USER_AGENT", cfg.Search.UserAgent)

	cfg.Server.Addr = getEnvOrDefault("SERVER_ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
}

func applyDefaults(cfg *Config) {
	if cfg.Search.DefaultProvider == "" {
		cfg.Search.DefaultProvider = ProviderUnsplash
	}
	if cfg.Search.TimeoutSec == 0 {
		cfg.Search.TimeoutSec = 30
	}
	cfg.Search.Timeout = time.Duration(cfg.Search.TimeoutSec) * time.Second
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Search.DefaultProvider {
	case ProviderUnsplash, ProviderPexels, ProviderPixabay, ProviderMock:
		return nil
	}
	return ErrInvalidProvider
}

// AccessKey returns the configured credential for a provider name. The mock
// provider needs no real credential, so it gets a fixed placeholder long
// enough to pass validation.
func (c *Config) AccessKey(provider string) (string, error) {
	switch provider {
	case ProviderUnsplash:
		if c.Unsplash.AccessKey != "" {
			return c.Unsplash.AccessKey, nil
		}
	case ProviderPexels:
		if c.Pexels.AccessKey != "" {
			return c.Pexels.AccessKey, nil
		}
	case ProviderPixabay:
		if c.Pixabay.AccessKey != "" {
			return c.Pixabay.AccessKey, nil
		}
	case ProviderMock:
		return "mock-access-key-0000000000", nil
	default:
		return "", ErrInvalidProvider
	}
	return "", fmt.Errorf("%w: %s", ErrMissingKey, provider)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
