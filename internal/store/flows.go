package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DH-11027/paradise/internal/series"
)

// FlowRepository persists per-category investor net-buy records per
// stock code. 외국인합계 is derived on load, never stored.
// ⭐ SSOT: 수급 데이터 저장소는 여기서만
type FlowRepository struct {
	pool *pgxpool.Pool
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(pool *pgxpool.Pool) *FlowRepository {
	return &FlowRepository{pool: pool}
}

// SaveBatch upserts a parsed flow series for one stock code.
func (r *FlowRepository) SaveBatch(ctx context.Context, code string, flows []series.FlowRecord) error {
	if len(flows) == 0 {
		return nil
	}

	query := `
		INSERT INTO investor_flows (
			stock_code, trade_date,
			financial_invest, insurance, investment_trust, private_equity,
			bank, other_finance, pension, other_corporation,
			retail, foreign_net, other_foreign, institution_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			financial_invest = EXCLUDED.financial_invest,
			insurance = EXCLUDED.insurance,
			investment_trust = EXCLUDED.investment_trust,
			private_equity = EXCLUDED.private_equity,
			bank = EXCLUDED.bank,
			other_finance = EXCLUDED.other_finance,
			pension = EXCLUDED.pension,
			other_corporation = EXCLUDED.other_corporation,
			retail = EXCLUDED.retail,
			foreign_net = EXCLUDED.foreign_net,
			other_foreign = EXCLUDED.other_foreign,
			institution_total = EXCLUDED.institution_total
	`

	batch := &pgx.Batch{}
	for _, f := range flows {
		day, err := parseDay(f.Date)
		if err != nil {
			return err
		}
		batch.Queue(query, code, day,
			f.FinancialInvestment, f.Insurance, f.InvestmentTrust, f.PrivateEquity,
			f.Bank, f.OtherFinance, f.Pension, f.OtherCorporation,
			f.Retail, f.Foreign, f.OtherForeign, f.InstitutionTotal,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range flows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save flows for %s: %w", code, err)
		}
	}
	return nil
}

// GetByCode retrieves the full flow series for a code, oldest first.
func (r *FlowRepository) GetByCode(ctx context.Context, code string) ([]series.FlowRecord, error) {
	query := `
		SELECT trade_date,
			financial_invest, insurance, investment_trust, private_equity,
			bank, other_finance, pension, other_corporation,
			retail, foreign_net, other_foreign, institution_total
		FROM investor_flows
		WHERE stock_code = $1
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query flows for %s: %w", code, err)
	}
	defer rows.Close()

	var flows []series.FlowRecord
	for rows.Next() {
		var (
			f   series.FlowRecord
			day time.Time
		)
		if err := rows.Scan(&day,
			&f.FinancialInvestment, &f.Insurance, &f.InvestmentTrust, &f.PrivateEquity,
			&f.Bank, &f.OtherFinance, &f.Pension, &f.OtherCorporation,
			&f.Retail, &f.Foreign, &f.OtherForeign, &f.InstitutionTotal,
		); err != nil {
			return nil, fmt.Errorf("scan flow row: %w", err)
		}
		f.Date = day.Format(dateLayout)
		f.RecomputeTotals()
		flows = append(flows, f)
	}
	return flows, rows.Err()
}
