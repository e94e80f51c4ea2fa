// Package store persists ledger collections, one row per kind.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/database"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

// Keys under which each collection is stored; shared with existing exports.
const (
	KeyCustomers = "customer_credit_data"
	KeyCreditors = "customer_credit_creditors"
)

// Key returns the storage key for a kind.
func Key(kind ledger.Kind) (string, error) {
	switch kind {
	case ledger.KindReceivable:
		return KeyCustomers, nil
	case ledger.KindPayable:
		return KeyCreditors, nil
	}

	return "", fmt.Errorf("no storage key for ledger kind %q", kind)
}

type Store struct {
	db     *sql.DB
	sqlite bool
}

// New returns a store over db. driver is database.DriverPostgres or
// database.DriverSQLite.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, sqlite: driver == database.DriverSQLite}
}

func (s *Store) Load(ctx context.Context, kind ledger.Kind) (ledger.Collection, error) {
	key, err := Key(kind)
	if err != nil {
		return ledger.Collection{}, err
	}

	var data []byte

	err = s.db.QueryRowContext(ctx, s.bind(`SELECT data FROM ledgers WHERE key = $1`), key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Collection{Kind: kind}, nil
	}

	if err != nil {
		return ledger.Collection{}, fmt.Errorf("query %s: %w", key, err)
	}

	c, err := codec.Decode(bytes.NewReader(data), kind)
	if err != nil {
		return ledger.Collection{}, fmt.Errorf("stored %s: %w", key, err)
	}

	return c, nil
}

func (s *Store) Save(ctx context.Context, c ledger.Collection) error {
	key, err := Key(c.Kind)
	if err != nil {
		return err
	}

	data, err := codec.Marshal(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ledgers (key, data, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, s.bind(query), key, string(data)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}

	return nil
}

var sqlitePlaceholders = strings.NewReplacer("$1", "?", "$2", "?")

func (s *Store) bind(query string) string {
	if s.sqlite {
		return sqlitePlaceholders.Replace(query)
	}

	return query
}
