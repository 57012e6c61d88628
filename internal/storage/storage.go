// Package storage opens the configured ledger backend and hands out its
// repository.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/filex"
	"github.com/dmitrijs2005/signout/internal/migrations"
	"github.com/dmitrijs2005/signout/internal/repositories/signouts"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Backend names a ledger implementation.
type Backend string

const (
	BackendJSON     Backend = "json"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Options select and locate the backend. Path is the JSON document or the
// SQLite database file; DSN is the PostgreSQL connection string.
type Options struct {
	Backend Backend
	Path    string
	DSN     string
}

// Ledger owns the repository and the database handle behind it, if any.
type Ledger struct {
	backend Backend
	repo    signouts.Repository
	db      *sql.DB
}

func (l *Ledger) Backend() Backend {
	return l.backend
}

func (l *Ledger) SignOuts() signouts.Repository {
	return l.repo
}

// Close releases the database handle. It is a no-op for the JSON backend.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Open opens the backend named in opts and, for SQL backends, applies pending
// migrations.
func Open(ctx context.Context, opts Options) (*Ledger, error) {
	switch opts.Backend {
	case BackendJSON, "":
		repo, err := signouts.NewJSONRepository(opts.Path)
		if err != nil {
			return nil, err
		}
		return &Ledger{backend: BackendJSON, repo: repo}, nil

	case BackendSQLite:
		if err := filex.EnsureDir(filepath.Dir(opts.Path)); err != nil {
			return nil, err
		}
		db, err := openSQL(ctx, "sqlite", opts.Path, migrations.DialectSQLite)
		if err != nil {
			return nil, err
		}
		return &Ledger{backend: BackendSQLite, repo: signouts.NewSQLiteRepository(db), db: db}, nil

	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres ledger: %w: empty DSN", common.ErrorValidation)
		}
		db, err := openSQL(ctx, "pgx", opts.DSN, migrations.DialectPostgres)
		if err != nil {
			return nil, err
		}
		return &Ledger{backend: BackendPostgres, repo: signouts.NewPostgresRepository(db), db: db}, nil

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrorUnknownBackend, opts.Backend)
	}
}

func openSQL(ctx context.Context, driver, dsn string, dialect migrations.Dialect) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := migrations.Up(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}
