package config

import (
	"fmt"

	"github.com/retrodex-labs/retrodex/internal/database"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case database.DialectSQLite:
		// Path defaults handled by the database layer.
	case database.DialectPostgres:
		if c.DBName == "" {
			return fmt.Errorf("db_name is required when db_driver is %q", database.DialectPostgres)
		}
	default:
		return fmt.Errorf("unsupported db_driver %q (want %q or %q)",
			c.DBDriver, database.DialectSQLite, database.DialectPostgres)
	}
	return nil
}
