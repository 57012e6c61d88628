// Package migrations embeds the goose migrations of the SQL ledger backends
// and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// SQLite holds the migrations under sqlite/.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the migrations under postgres/.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// Dialect names a goose dialect with a migration set.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// Up applies every pending migration for dialect. goose keeps its settings in
// package globals, so concurrent calls must not overlap.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var (
		fsys embed.FS
		dir  string
	)
	switch dialect {
	case DialectSQLite:
		fsys, dir = SQLite, "sqlite"
	case DialectPostgres:
		fsys, dir = Postgres, "postgres"
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}
