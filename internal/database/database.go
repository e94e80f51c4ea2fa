// Package database opens the SQL database backing the ledger store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// New opens and pings a database and creates the ledger schema if needed.
// For SQLite the dsn is a file path or ":memory:".
func New(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	case DriverSQLite:
		db, err = sql.Open("sqlite3", dsn+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" on a single shared connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}

// Migrate creates the ledgers table. Each row holds one whole collection.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dataType := "JSONB"
	if driver == DriverSQLite {
		dataType = "TEXT"
	}

	schema := `
	CREATE TABLE IF NOT EXISTS ledgers (
		key TEXT PRIMARY KEY,
		data ` + dataType + ` NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create ledgers table: %w", err)
	}

	return nil
}
