// Package store persists transactions and trades in a SQL database.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite) and "pgx"
// (PostgreSQL through github.com/jackc/pgx/v5/stdlib). Queries are written
// with '?' placeholders and rebound for the driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver   string
	serial   string // primary key column definition
	numbered bool   // $1, $2... placeholders
}

var dialects = map[string]dialect{
	"sqlite": {driver: "sqlite", serial: "INTEGER PRIMARY KEY AUTOINCREMENT"},
	"pgx":    {driver: "pgx", serial: "BIGSERIAL PRIMARY KEY", numbered: true},
}

// rebind rewrites '?' placeholders for the dialect.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS trades (
	id ` + d.serial + `,
	account_id BIGINT NOT NULL,
	batch_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	asset_type TEXT NOT NULL,
	bias TEXT NOT NULL,
	strategy TEXT NOT NULL,
	open_date BIGINT NOT NULL,
	close_date BIGINT NOT NULL,
	length BIGINT NOT NULL,
	quantity TEXT NOT NULL,
	buy_fee TEXT NOT NULL,
	buy_cost TEXT NOT NULL,
	buy_amount TEXT NOT NULL,
	buy_net_cost TEXT NOT NULL,
	buy_avg_price TEXT NOT NULL,
	sell_fee TEXT NOT NULL,
	sell_cost TEXT NOT NULL,
	sell_amount TEXT NOT NULL,
	sell_net_cost TEXT NOT NULL,
	sell_avg_price TEXT NOT NULL,
	trade_return TEXT NOT NULL,
	order_ids TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS transactions (
	id ` + d.serial + `,
	account_id BIGINT NOT NULL,
	transaction_id TEXT NOT NULL,
	type TEXT NOT NULL,
	order_id TEXT,
	symbol TEXT,
	asset_type TEXT,
	sub_type TEXT,
	amount TEXT,
	cost TEXT,
	fee TEXT,
	transaction_date BIGINT,
	trade_id BIGINT REFERENCES trades(id),
	UNIQUE (account_id, transaction_id)
)`,
		`CREATE INDEX IF NOT EXISTS transactions_trade ON transactions (account_id, trade_id)`,
		`CREATE INDEX IF NOT EXISTS trades_close ON trades (account_id, close_date)`,
	}
}

// Store is a transaction and trade database.
type Store struct {
	db *sql.DB
	d  dialect
}

// Open connects to the database and creates the tables if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// one connection keeps ":memory:" databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to %s database: %w", driver, err)
	}
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("cannot create schema: %w", err)
		}
	}
	return &Store{db: db, d: d}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) exec(ctx context.Context, q execer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.d.rebind(query), args...)
}

// execer is implemented by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
