package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultAPIHost = "https://api.madefire.com"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string        `mapstructure:"app_name"`
	Env            string        `mapstructure:"app_env"`
	LogLevel       string        `mapstructure:"log_level"`
	APIHost        string        `mapstructure:"madefire_api_host"`
	TimeoutSeconds int64         `mapstructure:"madefire_timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
	PublishersFile string        `mapstructure:"publishers_file"`
	MetricsFile    string        `mapstructure:"metrics_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "couponctl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("madefire_api_host", defaultAPIHost)
	v.SetDefault("madefire_timeout_seconds", 30)
	v.SetDefault("publishers_file", "")
	v.SetDefault("metrics_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIHost = strings.TrimSpace(cfg.APIHost)
	if cfg.APIHost == "" {
		return nil, fmt.Errorf("invalid madefire_api_host (must not be empty)")
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid madefire_timeout_seconds (must be positive seconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)
	cfg.MetricsFile = strings.TrimSpace(cfg.MetricsFile)

	return &cfg, nil
}
