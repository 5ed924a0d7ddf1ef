package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	App    AppConfig
	API    APIConfig
	Commit CommitConfig
	Log    LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL         string
	TimeoutSeconds  int
	MaxResponseSize int64 // bytes
	AccessToken     string
}

// CommitConfig holds allocation commit settings
type CommitConfig struct {
	MaxInFlight       int  // concurrent item upserts
	RetainFailedItems bool // keep failed pending items for retry
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREIN_ prefix (e.g. STOREIN_API_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.storein")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:         v.GetString("api.base_url"),
			TimeoutSeconds:  v.GetInt("api.timeout_seconds"),
			MaxResponseSize: v.GetInt64("api.max_response_size"),
			AccessToken:     v.GetString("api.access_token"),
		},
		Commit: CommitConfig{
			MaxInFlight:       v.GetInt("commit.max_in_flight"),
			RetainFailedItems: v.GetBool("commit.retain_failed_items"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storein-mobile-core"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 15
	}
	if cfg.API.MaxResponseSize == 0 {
		cfg.API.MaxResponseSize = 10 << 20 // 10MB
	}
	if cfg.Commit.MaxInFlight == 0 {
		cfg.Commit.MaxInFlight = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive")
	}
	if c.API.MaxResponseSize <= 0 {
		return fmt.Errorf("api.max_response_size must be positive")
	}
	if c.Commit.MaxInFlight <= 0 {
		return fmt.Errorf("commit.max_in_flight must be positive")
	}
	if c.App.Env == "production" && c.API.AccessToken == "" {
		return fmt.Errorf("api.access_token is required in production")
	}
	return nil
}
