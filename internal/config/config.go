package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/viewvault.db

	// Expansion cache
	ExpandCacheTTLMinutes int // TTL for cached collection/series expansions (default: 10)

	// Notifications
	NotifyWebhookURL string // optional; release notifications are POSTed here
	ReleaseCheckCron string // cron spec for the release scan (default: daily at 08:00)

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("EXPAND_CACHE_TTL_MINUTES", 10)
	viper.SetDefault("RELEASE_CHECK_CRON", "0 8 * * *")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "viewvault")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		ServerPort:            viper.GetString("SERVER_PORT"),
		DatabaseFile:          filepath.Join(configDir, "viewvault.db"),
		ExpandCacheTTLMinutes: viper.GetInt("EXPAND_CACHE_TTL_MINUTES"),
		NotifyWebhookURL:      viper.GetString("NOTIFY_WEBHOOK_URL"),
		ReleaseCheckCron:      viper.GetString("RELEASE_CHECK_CRON"),
		LogLevel:              viper.GetString("LOG_LEVEL"),
	}

	if config.ExpandCacheTTLMinutes < 0 {
		return nil, fmt.Errorf("EXPAND_CACHE_TTL_MINUTES must not be negative")
	}

	return config, nil
}
