// Package config loads the loyaltypro service configuration from a
// YAML file with sensible defaults for local development. Secrets come
// from the environment (a .env file is honored at startup).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// OpsToken gates the /admin control plane. Empty disables the
	// state/reset/time endpoints entirely.
	OpsToken string `yaml:"ops_token"`
}

// DataConfig holds snapshot persistence settings.
type DataConfig struct {
	File string `yaml:"file"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// TokenSecret signs session tokens. When empty a random secret is
	// generated at startup, which invalidates sessions across restarts.
	TokenSecret string   `yaml:"token_secret"`
	TokenTTL    Duration `yaml:"token_ttl"`
}

// InsightsConfig holds the text-generation bridge settings.
type InsightsConfig struct {
	Model     string   `yaml:"model"`
	Endpoint  string   `yaml:"endpoint"`
	APIKeyEnv string   `yaml:"api_key_env"`
	Timeout   Duration `yaml:"timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Auth     AuthConfig     `yaml:"auth"`
	Insights InsightsConfig `yaml:"insights"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8090},
		Data:   DataConfig{File: "loyaltypro.json"},
		Auth:   AuthConfig{TokenTTL: Duration(24 * time.Hour)},
		Insights: InsightsConfig{
			Model:     "gemini-3-flash-preview",
			Endpoint:  "https://generativelanguage.googleapis.com/v1beta",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   Duration(30 * time.Second),
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads the config file at path, applying defaults for any field
// left unset. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = Duration(24 * time.Hour)
	}
	if cfg.Insights.Timeout <= 0 {
		cfg.Insights.Timeout = Duration(30 * time.Second)
	}
	return cfg, nil
}

// APIKey resolves the insights API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(c.Insights.APIKeyEnv)
}
