// Package database manages the shared store handle, schema bootstrap and
// initial sample data.
//
// The store is reached through database/sql (via sqlx) so the same queries run
// against both supported engines: the embedded pure-Go SQLite driver used by
// default and in tests, and PostgreSQL through pgx's stdlib adapter.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/invtrack/invtrack/internal/config"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect identifies the SQL engine behind the handle.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func init() {
	// sqlx does not know the modernc driver name out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB is the process-wide store handle. It is opened once at startup, injected
// into every component and closed at shutdown.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Open connects to the store described by cfg.URL.
//
// URL forms:
//   - "postgres://..." / "postgresql://..." → PostgreSQL via pgx
//   - "sqlite:<path>"                       → embedded SQLite
//   - anything else                         → treated as a SQLite file path
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	url := strings.TrimSpace(cfg.URL)

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		db, err := sqlx.ConnectContext(ctx, "pgx", url)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
		return &DB{DB: db, Dialect: DialectPostgres}, nil
	}

	path := strings.TrimPrefix(url, "sqlite:")
	db, err := sqlx.ConnectContext(ctx, "sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps an
	// in-memory database alive across requests.
	db.SetMaxOpenConns(1)
	return &DB{DB: db, Dialect: DialectSQLite}, nil
}

// sqliteDSN builds a modernc DSN enabling foreign keys, required for the
// history cascade on product delete.
func sqliteDSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Bootstrap creates the schema if it does not exist yet.
//
// The unique index on LOWER(name) is the hard backstop for the
// application-level duplicate pre-check: two concurrent creates that both pass
// the check cannot both commit.
func (db *DB) Bootstrap(ctx context.Context) error {
	for _, stmt := range schemaStatements(db.Dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(d Dialect) []string {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	refCol := "INTEGER"
	tsCol := "TIMESTAMP"
	if d == DialectPostgres {
		idCol = "BIGSERIAL PRIMARY KEY"
		refCol = "BIGINT"
		tsCol = "TIMESTAMPTZ"
	}

	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS products (
				id %s,
				name TEXT NOT NULL,
				unit TEXT NOT NULL,
				category TEXT NOT NULL,
				brand TEXT NOT NULL,
				stock INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				image TEXT,
				created_at %s NOT NULL,
				updated_at %s NOT NULL
			)`, idCol, tsCol, tsCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS inventory_history (
				id %s,
				product_id %s NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				old_quantity INTEGER NOT NULL,
				new_quantity INTEGER NOT NULL,
				change_date %s NOT NULL,
				user_info TEXT
			)`, idCol, refCol, tsCol),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_lower ON products (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS idx_history_product ON inventory_history (product_id, change_date DESC)`,
	}
}
