// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	// Port the API listens on.
	Port string

	// DatabaseURL is the postgres connection string. Empty means the API
	// falls back to the in-memory store (local development only).
	DatabaseURL string

	// NotionToken and NotionDatabaseID configure the confirmed-transaction
	// export; both empty unless the sync binary is in use.
	NotionToken      string
	NotionDatabaseID string
}

// Load reads the environment, layering a .env file underneath when one
// exists. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:             os.Getenv("PORT"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DatabaseURL == "" {
		// Assemble from discrete DB_* variables if they are set.
		if host := os.Getenv("DB_HOST"); host != "" {
			cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:5432/%s",
				os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, os.Getenv("DB_NAME"))
		}
	}
	return cfg
}
