package database

import (
	"embed"
	"fmt"
	"log/slog"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// migrationsDir returns the embedded migration directory for the dialect.
// Both trees carry the same version numbers; only the SQL differs where the
// engines diverge (SQLite cannot tighten a column to NOT NULL in place).
func (d *DB) migrationsDir() string {
	return path.Join("migrations", d.Dialect)
}

// configureGoose points goose at the embedded scripts for this dialect.
// goose owns all version bookkeeping; the scripts themselves are pure
// schema state transitions.
func (d *DB) configureGoose() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(d.Dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}

// MigrateUp applies all pending migrations.
func (d *DB) MigrateUp() error {
	if err := d.configureGoose(); err != nil {
		return err
	}
	if err := goose.Up(d.DB, d.migrationsDir()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	d.logger.Info("migrations applied", slog.String("dialect", d.Dialect))
	return nil
}

// MigrateUpTo applies pending migrations up to and including version.
func (d *DB) MigrateUpTo(version int64) error {
	if err := d.configureGoose(); err != nil {
		return err
	}
	if err := goose.UpTo(d.DB, d.migrationsDir(), version); err != nil {
		return fmt.Errorf("failed to migrate up to version %d: %w", version, err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (d *DB) MigrateDown() error {
	if err := d.configureGoose(); err != nil {
		return err
	}
	if err := goose.Down(d.DB, d.migrationsDir()); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrateDownTo rolls back migrations until the schema is at version.
func (d *DB) MigrateDownTo(version int64) error {
	if err := d.configureGoose(); err != nil {
		return err
	}
	if err := goose.DownTo(d.DB, d.migrationsDir(), version); err != nil {
		return fmt.Errorf("failed to roll back to version %d: %w", version, err)
	}
	return nil
}

// MigrateRedo rolls back the latest migration and re-applies it.
func (d *DB) MigrateRedo() error {
	if err := d.configureGoose(); err != nil {
		return err
	}
	if err := goose.Redo(d.DB, d.migrationsDir()); err != nil {
		return fmt.Errorf("failed to redo migration: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func (d *DB) MigrationVersion() (int64, error) {
	if err := d.configureGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(d.DB)
}

// MigrationState describes one known migration and whether it has been
// applied.
type MigrationState struct {
	Version int64
	Source  string
	Applied bool
}

// MigrationStatus lists every known migration with its applied state.
// Migrations apply strictly in version order, so a migration is applied
// exactly when its version does not exceed the current schema version.
func (d *DB) MigrationStatus() ([]MigrationState, error) {
	if err := d.configureGoose(); err != nil {
		return nil, err
	}

	migrations, err := goose.CollectMigrations(d.migrationsDir(), 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to collect migrations: %w", err)
	}

	current, err := goose.EnsureDBVersion(d.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	states := make([]MigrationState, 0, len(migrations))
	for _, m := range migrations {
		states = append(states, MigrationState{
			Version: m.Version,
			Source:  path.Base(m.Source),
			Applied: m.Version <= current,
		})
	}
	return states, nil
}
