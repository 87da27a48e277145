// Package database opens catalog database connections and applies schema
// migrations. SQLite and PostgreSQL are supported; the migration runner is
// goose, with the SQL scripts embedded per dialect.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported dialect names.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config holds database connection settings.
type Config struct {
	// Driver is the dialect: "sqlite" or "postgres".
	Driver string

	// Path is the database file for SQLite. Use ":memory:" for an
	// in-memory database.
	Path string

	// Network settings for PostgreSQL.
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Options contains additional driver-specific DSN parameters.
	Options map[string]string
}

// DB wraps a sql.DB with its dialect, which the migration runner and the
// store's placeholder rewriting both need.
type DB struct {
	*sql.DB
	Dialect string

	logger *slog.Logger
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DialectSQLite
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DialectSQLite:
		db, err = openSQLite(cfg)
	case DialectPostgres:
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	logger.Debug("database connected", slog.String("driver", driver))

	return &DB{DB: db, Dialect: driver, logger: logger}, nil
}

func openSQLite(cfg Config) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	var dsn string
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	} else {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection keeps writers from tripping SQLITE_BUSY, gives
	// each in-memory database one consistent view, and lets non-transactional
	// migration scripts run their PRAGMA/BEGIN/COMMIT sequence on one
	// connection.
	db.SetMaxOpenConns(1)

	return db, nil
}

func openPostgres(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", buildPostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return db, nil
}

// buildPostgresDSN assembles a postgres:// URL from the config.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}

	q := u.Query()
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
