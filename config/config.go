// Package config loads the YAML configuration of the price estimator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"airbnbprice/logging"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http    HTTPConfig     `yaml:"http"`
	Model   ModelConfig    `yaml:"model"`
	Log     logging.Config `yaml:"log"`
	History HistoryConfig  `yaml:"history"`
	UI      UIConfig       `yaml:"ui"`
}

type HTTPConfig struct {
	Port           int             `yaml:"port"`
	Timeout        time.Duration   `yaml:"timeout"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	MaxBodyBytes   int64           `yaml:"max_body_bytes"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
	MaxClients        int  `yaml:"max_clients"`
}

type ModelConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UIConfig struct {
	DefaultLanguage string `yaml:"default_language"`
}

func Default() *Config {
	return &Config{
		Http: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   64 << 10,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             20,
				MaxClients:        10000,
			},
		},
		Model: ModelConfig{
			Dir:    "models",
			Prefix: "airbnb",
		},
		Log: logging.DefaultConfig(),
		History: HistoryConfig{
			Enabled: true,
			Path:    "data/predictions.db",
		},
		UI: UIConfig{
			DefaultLanguage: "en",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and validates the result.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PRICER_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PRICER_HTTP_PORT: %w", err)
		}
		c.Http.Port = port
	}
	if v := os.Getenv("PRICER_MODEL_DIR"); v != "" {
		c.Model.Dir = v
	}
	if v := os.Getenv("PRICER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PRICER_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Http.MaxBodyBytes <= 0 {
		return errors.New("http.max_body_bytes must be positive")
	}
	if rl := c.Http.RateLimit; rl.Enabled && (rl.RequestsPerMinute <= 0 || rl.Burst <= 0 || rl.MaxClients <= 0) {
		return errors.New("http.rate_limit values must be positive when enabled")
	}
	if c.Model.Dir == "" {
		return errors.New("model.dir is required")
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}
	return nil
}
