// Package commands implements the retrodex subcommands.
package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/retrodex-labs/retrodex/internal/catalog"
	"github.com/retrodex-labs/retrodex/internal/cli/config"
	"github.com/retrodex-labs/retrodex/internal/cli/output"
	"github.com/retrodex-labs/retrodex/internal/database"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	DB       *database.DB
	Store    *catalog.SQLStore
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open database and store.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	db, err := database.Open(cmd.Context(), cfg.DatabaseConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	store := catalog.New(db, logger)
	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		DB:       db,
		Store:    store,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutDB creates a CommandContext without opening the
// database. Useful for commands that don't need catalog access.
func NewCommandContextWithoutDB(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	port := 0
	if v := os.Getenv("RETRODEX_DB_PORT"); v != "" {
		port, _ = strconv.Atoi(v)
	}

	return &config.Config{
		DBDriver:     getEnvOrDefault("RETRODEX_DB_DRIVER", config.DefaultDBDriver),
		DBPath:       getEnvOrDefault("RETRODEX_DB_PATH", config.DefaultDBPath),
		DBHost:       os.Getenv("RETRODEX_DB_HOST"),
		DBPort:       port,
		DBUser:       os.Getenv("RETRODEX_DB_USER"),
		DBPassword:   os.Getenv("RETRODEX_DB_PASSWORD"),
		DBName:       os.Getenv("RETRODEX_DB_NAME"),
		DBSSLMode:    os.Getenv("RETRODEX_DB_SSLMODE"),
		ServerAddr:   getEnvOrDefault("RETRODEX_SERVER_ADDR", config.DefaultServerAddr),
		SeedFile:     getEnvOrDefault("RETRODEX_SEED_FILE", config.DefaultSeedFile),
		Verbose:      os.Getenv("RETRODEX_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("RETRODEX_OUTPUT", config.DefaultOutput),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
