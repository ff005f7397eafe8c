package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use values like "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds server settings. All fields have working defaults; a YAML
// config file and a handful of environment variables can override them.
type Config struct {
	Port          string   `yaml:"port"`
	Provider      string   `yaml:"provider"`
	Model         string   `yaml:"model"`
	MaxUploadSize int64    `yaml:"max_upload_size"`
	CacheSize     int      `yaml:"cache_size"`
	CacheTTL      Duration `yaml:"cache_ttl"`
	MaxConcurrent int      `yaml:"max_concurrent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:          "8888",
		Provider:      "gemini",
		MaxUploadSize: 10 * 1024 * 1024,
		CacheSize:     128,
		CacheTTL:      Duration(time.Hour),
		MaxConcurrent: 4,
	}
}

// Load reads the config file at path when it exists, then applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if port := os.Getenv("SKETCHIFY_PORT"); port != "" {
		cfg.Port = port
	}
	if provider := os.Getenv("SKETCHIFY_PROVIDER"); provider != "" {
		cfg.Provider = provider
	}
	if model := os.Getenv("SKETCHIFY_MODEL"); model != "" {
		cfg.Model = model
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Provider != "gemini" && c.Provider != "openai" {
		return fmt.Errorf("unknown provider %q (valid: gemini, openai)", c.Provider)
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("max_upload_size must be positive")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	if c.MaxConcurrent <= 0 {
		return errors.New("max_concurrent must be positive")
	}
	return nil
}
