// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// ERP Backend Configuration
	ERPBaseURL        string        `mapstructure:"ERP_BASE_URL"`
	ERPDefaultToken   string        `mapstructure:"ERP_DEFAULT_TOKEN"`
	ERPRequestTimeout time.Duration `mapstructure:"ERP_REQUEST_TIMEOUT_SECONDS"`

	// Session Store Configuration
	SessionBackend string        `mapstructure:"SESSION_BACKEND"` // "memory" or "redis"
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL_HOURS"`
	HandoffTTL     time.Duration `mapstructure:"OAUTH_HANDOFF_TTL_MINUTES"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`

	// OAuth Providers
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`
	FacebookAppID  string `mapstructure:"FACEBOOK_APP_ID"`

	// Payment Gateway
	RazorpayKeyID string `mapstructure:"RAZORPAY_KEY_ID"`

	// Cron Jobs
	CleanupJobSchedule string `mapstructure:"CLEANUP_JOB_SCHEDULE"`

	// Toast lifetimes
	AuthToastTTL     time.Duration `mapstructure:"AUTH_TOAST_TTL_SECONDS"`
	SettingsToastTTL time.Duration `mapstructure:"SETTINGS_TOAST_TTL_SECONDS"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("ERP_BASE_URL", "http://localhost:8000")
	// Shared read-only token used before a session exists. Must be provided
	// via environment; there is deliberately no baked-in default credential.
	v.SetDefault("ERP_DEFAULT_TOKEN", "")
	v.SetDefault("ERP_REQUEST_TIMEOUT_SECONDS", 30)

	v.SetDefault("SESSION_BACKEND", "memory")
	v.SetDefault("SESSION_TTL_HOURS", 72)
	v.SetDefault("OAUTH_HANDOFF_TTL_MINUTES", 15)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("FACEBOOK_APP_ID", "")
	v.SetDefault("RAZORPAY_KEY_ID", "")

	v.SetDefault("CLEANUP_JOB_SCHEDULE", "@every 1m")

	v.SetDefault("AUTH_TOAST_TTL_SECONDS", 5)
	v.SetDefault("SETTINGS_TOAST_TTL_SECONDS", 3)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.ERPRequestTimeout = time.Duration(v.GetInt("ERP_REQUEST_TIMEOUT_SECONDS")) * time.Second
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour
	cfg.HandoffTTL = time.Duration(v.GetInt("OAUTH_HANDOFF_TTL_MINUTES")) * time.Minute
	cfg.AuthToastTTL = time.Duration(v.GetInt("AUTH_TOAST_TTL_SECONDS")) * time.Second
	cfg.SettingsToastTTL = time.Duration(v.GetInt("SETTINGS_TOAST_TTL_SECONDS")) * time.Second

	if cfg.ERPBaseURL == "" {
		return nil, fmt.Errorf("ERP_BASE_URL must be set")
	}

	return &cfg, nil
}
