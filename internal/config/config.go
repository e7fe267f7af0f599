// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds everything read from the environment
type Config struct {
	// Discord
	DiscordToken  string
	ApplicationID string
	// GuildID registers commands for a single guild during development
	GuildID string

	// Storage
	StoreBackend  string
	DataFile      string
	RedisAddr     string
	RedisPassword string
	RedisKey      string
	SQLitePath    string

	// HTTPAddr enables the read-only API when set
	HTTPAddr string

	RefreshInterval time.Duration
	SaveInterval    time.Duration

	AppEnv   string
	LogLevel string
}

// Load reads .env files when present, then the environment
func Load() (*Config, error) {
	// Missing env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	refresh, err := getDuration("REFRESH_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	save, err := getDuration("SAVE_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		ApplicationID:   os.Getenv("APPLICATION_ID"),
		GuildID:         os.Getenv("GUILD_ID"),
		StoreBackend:    getEnv("STORE_BACKEND", BackendFile),
		DataFile:        getEnv("DATA_FILE", "data.json"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisKey:        getEnv("REDIS_KEY", "promile:store"),
		SQLitePath:      getEnv("SQLITE_PATH", "promile.db"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		RefreshInterval: refresh,
		SaveInterval:    save,
		AppEnv:          getEnv("APP_ENV", "production"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile:
		if c.DataFile == "" {
			return errors.New("DATA_FILE cannot be empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR cannot be empty")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q, expected file, redis or sqlite", c.StoreBackend)
	}

	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be positive")
	}
	if c.SaveInterval <= 0 {
		return errors.New("SAVE_INTERVAL must be positive")
	}
	return nil
}

// ValidateBot checks the settings needed to connect to Discord
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN environment variable is required")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
