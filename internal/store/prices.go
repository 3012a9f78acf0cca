package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DH-11027/paradise/internal/series"
)

// PriceRepository persists daily OHLCV bars per stock code.
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// SaveBatch upserts a parsed price series for one stock code.
func (r *PriceRepository) SaveBatch(ctx context.Context, code string, bars []series.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_prices (stock_code, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		day, err := parseDay(b.Date)
		if err != nil {
			return err
		}
		batch.Queue(query, code, day, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save prices for %s: %w", code, err)
		}
	}
	return nil
}

// GetByCode retrieves the full price series for a code, oldest first.
func (r *PriceRepository) GetByCode(ctx context.Context, code string) ([]series.PriceBar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		WHERE stock_code = $1
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", code, err)
	}
	defer rows.Close()

	var bars []series.PriceBar
	for rows.Next() {
		var (
			b   series.PriceBar
			day time.Time
		)
		if err := rows.Scan(&day, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		b.Date = day.Format(dateLayout)
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetByCodeAndDateRange retrieves prices for a code within [from, to].
func (r *PriceRepository) GetByCodeAndDateRange(ctx context.Context, code string, from, to time.Time) ([]series.PriceBar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		WHERE stock_code = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", code, err)
	}
	defer rows.Close()

	var bars []series.PriceBar
	for rows.Next() {
		var (
			b   series.PriceBar
			day time.Time
		)
		if err := rows.Scan(&day, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		b.Date = day.Format(dateLayout)
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetLatestDate returns the most recent stored trade date for a code,
// or the zero time when nothing is stored yet.
func (r *PriceRepository) GetLatestDate(ctx context.Context, code string) (time.Time, error) {
	query := `
		SELECT trade_date
		FROM daily_prices
		WHERE stock_code = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var day time.Time
	err := r.pool.QueryRow(ctx, query, code).Scan(&day)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest date for %s: %w", code, err)
	}
	return day, nil
}
