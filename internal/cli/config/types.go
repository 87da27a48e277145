// Package config provides configuration management for the Retrodex CLI.
//
// Configuration is loaded from (lowest to highest precedence) built-in
// defaults, a retrodex.yaml file, RETRODEX_-prefixed environment variables,
// and command-line flags.
package config

import (
	"github.com/retrodex-labs/retrodex/internal/database"
)

// Config holds all CLI configuration options.
type Config struct {
	DBDriver   string `koanf:"db_driver"`
	DBPath     string `koanf:"db_path"`
	DBHost     string `koanf:"db_host"`
	DBPort     int    `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_sslmode"`

	ServerAddr   string `koanf:"server_addr"`
	SeedFile     string `koanf:"seed_file"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultDBDriver   = database.DialectSQLite
	DefaultDBPath     = "retrodex.db"
	DefaultServerAddr = ":8484"
	DefaultSeedFile   = "seeds/catalog.yaml"
	DefaultOutput     = "auto" // Auto-detect: TTY=table, non-TTY=plain text
)

// DatabaseConfig converts the flat CLI configuration into the database
// layer's connection config.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.DBDriver,
		Path:     c.DBPath,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Database: c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}
