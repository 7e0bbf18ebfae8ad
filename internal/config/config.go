package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bookListings/internal/db"
	"bookListings/internal/session"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Session  SessionConfig
	Log      LogConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// SessionConfig locates the preferences file holding the signed-in email.
type SessionConfig struct {
	Path string
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string // any logrus level name
	Format string // "json" or "text"
}

// Load reads configuration from the environment with sensible defaults.
// Values from a .env file in the working directory are used only for keys
// the environment does not already set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", db.DefaultPath),
		},
		Session: SessionConfig{
			Path: getEnv("SESSION_PATH", session.DefaultPath),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects empty paths and unknown log settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if strings.TrimSpace(c.Session.Path) == "" {
		return fmt.Errorf("SESSION_PATH must not be empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or text", c.Log.Format)
	}
	return nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, Session: %s, Log: %s/%s}", c.Database.Path, c.Session.Path, c.Log.Level, c.Log.Format)
}
