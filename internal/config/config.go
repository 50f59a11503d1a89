// Package config provides Viper-based hierarchical configuration management.
//
// Values are resolved in this order, later sources winning: defaults, the
// config.yaml file, a .env file, SPLITSMART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmynk/splitsmart/pkg/logging"
)

// EnvPrefix prefixes every environment override, e.g. SPLITSMART_SERVER_PORT.
const EnvPrefix = "SPLITSMART"

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Storage struct {
		// Path is the SQLite database file.
		Path string `mapstructure:"path"`
	} `mapstructure:"storage"`

	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`

	Auth struct {
		Secret   string        `mapstructure:"secret"`
		TokenTTL time.Duration `mapstructure:"token_ttl"`
		// Required rejects RPCs without a valid bearer token.
		Required bool `mapstructure:"required"`
	} `mapstructure:"auth"`

	Display struct {
		Currency string `mapstructure:"currency"`
	} `mapstructure:"display"`
}

// Load reads configuration. When configFile is empty the usual locations are
// searched and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.splitsmart")
		v.AddConfigPath(".splitsmart")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.path", "./data/splitsmart.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.required", false)
	v.SetDefault("display.currency", "₹")
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got: %s", c.Auth.TokenTTL)
	}
	if c.Auth.Required && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth.required is set")
	}
	return nil
}

// loadDotEnv loads path into the environment if it exists. Variables that
// are already set keep their values.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
