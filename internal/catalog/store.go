// Package catalog implements the catalog store over database/sql. One
// implementation serves both supported dialects; queries are written with ?
// placeholders and rewritten for postgres.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/retrodex-labs/retrodex/internal/database"
	"github.com/retrodex-labs/retrodex/pkg/core"
)

// SQLStore implements core.Store.
type SQLStore struct {
	db     *database.DB
	logger *slog.Logger
}

var _ core.Store = (*SQLStore)(nil)

// New creates a store over an open database connection.
func New(db *database.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLStore{db: db, logger: logger}
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $1..$N for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.db.Dialect != database.DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFound converts sql.ErrNoRows into the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// jsonOrEmpty substitutes the empty document for nil JSON values on writes.
func jsonOrEmpty(v core.JSON) []byte {
	if len(v) == 0 {
		return []byte(core.EmptyJSON)
	}
	return []byte(v)
}

// idOrSlugClause returns a WHERE fragment and its argument for an id-or-slug
// lookup against the given alias.
func idOrSlugClause(alias string, v core.IDOrSlug) (string, any) {
	if id, ok := v.AsID(); ok {
		return alias + ".id = ?", id
	}
	return alias + ".slug = ?", string(v)
}

// inPlaceholders returns "?, ?, ..." for n arguments.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
