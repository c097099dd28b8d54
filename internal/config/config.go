// internal/config/config.go
//
// Application configuration.
//
// Sources, lowest to highest precedence:
//   1. Built-in defaults (below).
//   2. Optional YAML/JSON/TOML file named by CONFIG_FILE.
//   3. Environment variables (PORT, LOG_LEVEL, RAWG_API_KEY, ...).
//
// .env files are loaded by main via godotenv before Load runs.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Port          string        `mapstructure:"port" validate:"required,numeric"`
	LogLevel      string        `mapstructure:"log_level" validate:"required,oneof=trace debug info warn error fatal"`
	ClientOrigin  string        `mapstructure:"client_origin" validate:"required,url"`
	Production    bool          `mapstructure:"production"`
	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=16"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`

	RAWGBaseURL  string `mapstructure:"rawg_base_url" validate:"required,url"`
	RAWGAPIKey   string `mapstructure:"rawg_api_key"`
	CatalogSize  int    `mapstructure:"catalog_size" validate:"gte=15"`
	GiphyBaseURL string `mapstructure:"giphy_base_url" validate:"required,url"`
	GiphyAPIKey  string `mapstructure:"giphy_api_key"`
}

// DevSessionSecret is the fallback signing secret; it is refused in production.
const DevSessionSecret = "dev_secret_change_me"

var defaults = map[string]any{
	"port":           "5175",
	"log_level":      "info",
	"client_origin":  "http://localhost:5173",
	"production":     false,
	"session_secret": DevSessionSecret,
	"session_ttl":    "6h",
	"fetch_timeout":  "10s",
	"rawg_base_url":  "https://api.rawg.io/api",
	"rawg_api_key":   "",
	"catalog_size":   10000,
	"giphy_base_url": "https://api.giphy.com",
	"giphy_api_key":  "",
}

// Load reads defaults, the optional CONFIG_FILE, then the environment.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// NODE_ENV=production is honoured for parity with the web client's tooling.
	if os.Getenv("NODE_ENV") == "production" {
		v.Set("production", true)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Production && cfg.SessionSecret == DevSessionSecret {
		return nil, errors.New("invalid config: SESSION_SECRET must be set in production")
	}
	return &cfg, nil
}
