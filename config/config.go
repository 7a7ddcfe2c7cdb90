// Package config reads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ProjectID is the Firebase/GCP project. Empty means "discover via the
	// metadata server".
	ProjectID string
	// APIKey is the Firebase web API key used for password sign-in.
	APIKey string
	// CachePath is the local thread-cache database file.
	CachePath string
	// LogPath is where structured logs go; empty falls back to stderr.
	LogPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		ProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		APIKey:    getEnv("FIREBASE_API_KEY", ""),
		CachePath: getEnv("GROUPCHAT_CACHE_PATH", defaultCachePath()),
		LogPath:   getEnv("GROUPCHAT_LOG_PATH", ""),
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "groupchat-cache.db"
	}
	return filepath.Join(dir, "groupchat", "cache.db")
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
