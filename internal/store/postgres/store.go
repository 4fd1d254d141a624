// Package postgres implements store.Store on top of PostgreSQL.
//
// Balances are stored as NUMERIC(30,8) and travel through strings so no
// binary floating point ever touches an amount. Every balance mutation
// and the log rows recording it commit inside one database transaction.
package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/store"
)

// Store is the PostgreSQL-backed ledger store.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New wraps an open database handle. The caller owns migrations and the
// connection pool settings.
func New(db *sql.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{db: db, log: log}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func parseDecimal(raw string, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func rollback(tx *sql.Tx, log *slog.Logger) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		log.Error("transaction rollback failed", slog.Any("error", err))
	}
}
