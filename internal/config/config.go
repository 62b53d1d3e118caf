// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string. When empty it is
	// assembled from the DB_* environment variables; when those are also
	// absent the server runs in degraded mode and answers 503.
	DatabaseDSN string

	// UploadsDir is the root directory for stored file blobs.
	UploadsDir string

	// BaseURL is the public prefix used to build file URLs.
	BaseURL string

	// TokenSecret signs session tokens. Must be overridden outside
	// development.
	TokenSecret string

	// AdminEmail and AdminPassword seed the first admin account when no
	// admin exists at startup.
	AdminEmail    string
	AdminPassword string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.UploadsDir, "u", "uploads", "uploads root directory")
	flag.StringVar(&options.BaseURL, "b", "", "public base url for file links")
	flag.StringVar(&options.TokenSecret, "s", "corpdesk-dev-secret", "session token secret")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if options.DatabaseDSN == "" {
		options.DatabaseDSN = dsnFromParts()
	}
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		options.UploadsDir = dir
	}
	if base := os.Getenv("BASE_URL"); base != "" {
		options.BaseURL = base
	}
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		options.TokenSecret = secret
	}
	options.AdminEmail = envOr("ADMIN_EMAIL", "admin@corpdesk.local")
	options.AdminPassword = envOr("ADMIN_PASSWORD", "admin123")

	return options
}

// dsnFromParts assembles a Postgres DSN from the DB_* environment
// variables. Returns "" when DB_HOST is unset so the server can detect the
// no-database degraded mode.
func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	user := envOr("DB_USER", "postgres")
	pass := envOr("DB_PASSWORD", "postgres")
	name := envOr("DB_NAME", "corpdesk")
	port := envOr("DB_PORT", "5432")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
