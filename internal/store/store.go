// Package store persists parsed price and investor-flow series in
// PostgreSQL so the API can serve a stock without a fresh upload.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

// Store bundles the per-series repositories over one pool.
// ⭐ SSOT: 시리즈 영속화는 이 패키지에서만
type Store struct {
	Prices *PriceRepository
	Flows  *FlowRepository

	pool *pgxpool.Pool
}

// New creates a store over an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Prices: NewPriceRepository(pool),
		Flows:  NewFlowRepository(pool),
		pool:   pool,
	}
}

// Pool returns the underlying database pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// EnsureSchema creates the series tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_prices (
			stock_code  TEXT NOT NULL,
			trade_date  DATE NOT NULL,
			open_price  DOUBLE PRECISION NOT NULL,
			high_price  DOUBLE PRECISION NOT NULL,
			low_price   DOUBLE PRECISION NOT NULL,
			close_price DOUBLE PRECISION NOT NULL,
			volume      DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (stock_code, trade_date)
		)`,
		`CREATE TABLE IF NOT EXISTS investor_flows (
			stock_code        TEXT NOT NULL,
			trade_date        DATE NOT NULL,
			financial_invest  DOUBLE PRECISION NOT NULL DEFAULT 0,
			insurance         DOUBLE PRECISION NOT NULL DEFAULT 0,
			investment_trust  DOUBLE PRECISION NOT NULL DEFAULT 0,
			private_equity    DOUBLE PRECISION NOT NULL DEFAULT 0,
			bank              DOUBLE PRECISION NOT NULL DEFAULT 0,
			other_finance     DOUBLE PRECISION NOT NULL DEFAULT 0,
			pension           DOUBLE PRECISION NOT NULL DEFAULT 0,
			other_corporation DOUBLE PRECISION NOT NULL DEFAULT 0,
			retail            DOUBLE PRECISION NOT NULL DEFAULT 0,
			foreign_net       DOUBLE PRECISION NOT NULL DEFAULT 0,
			other_foreign     DOUBLE PRECISION NOT NULL DEFAULT 0,
			institution_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (stock_code, trade_date)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// parseDay converts a canonical YYYY-MM-DD series date for a DATE column.
func parseDay(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse trade date %q: %w", date, err)
	}
	return t, nil
}
