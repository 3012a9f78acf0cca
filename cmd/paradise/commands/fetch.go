package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DH-11027/paradise/internal/external/naver"
	"github.com/DH-11027/paradise/internal/store"
	"github.com/DH-11027/paradise/pkg/config"
	"github.com/DH-11027/paradise/pkg/database"
	"github.com/DH-11027/paradise/pkg/httputil"
	"github.com/DH-11027/paradise/pkg/logger"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "종목 데이터 수집",
	Long: `Naver Finance에서 가격/수급 데이터를 수집합니다.

DB_ENABLED=true이면 수집한 데이터를 저장소에 upsert합니다.

Example:
  go run ./cmd/paradise fetch --code 005930
  go run ./cmd/paradise fetch --code 005930 --days 730`,
	RunE: runFetch,
}

var (
	fetchCode string
	fetchDays int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchCode, "code", "", "종목 코드 (필수)")
	fetchCmd.Flags().IntVar(&fetchDays, "days", 365, "수집 기간 (일)")
	fetchCmd.MarkFlagRequired("code")
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Paradise Fetcher ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)
	ctx := cmd.Context()

	httpClient := httputil.New(log)
	fetcher := naver.NewClient(httpClient, cfg.Naver, log)

	to := time.Now()
	from := to.AddDate(0, 0, -fetchDays)

	fmt.Printf("Fetching %s (%s ~ %s)\n", fetchCode, from.Format("2006-01-02"), to.Format("2006-01-02"))

	prices, err := fetcher.FetchPrices(ctx, fetchCode, from, to)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	fmt.Printf("  prices: %d bars\n", len(prices))

	flows, err := fetcher.FetchInvestorFlow(ctx, fetchCode, from, to)
	if err != nil {
		return fmt.Errorf("fetch investor flow: %w", err)
	}
	fmt.Printf("  flows:  %d records\n", len(flows))

	if !cfg.Database.Enabled {
		fmt.Println("\nDB_ENABLED=false, skipping persistence")
		return nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	st := store.New(db.Pool)
	if err := st.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	if err := st.Prices.SaveBatch(ctx, fetchCode, prices); err != nil {
		return fmt.Errorf("save prices: %w", err)
	}
	if err := st.Flows.SaveBatch(ctx, fetchCode, flows); err != nil {
		return fmt.Errorf("save investor flow: %w", err)
	}

	fmt.Printf("\n✅ Stored %d prices and %d flow records for %s\n", len(prices), len(flows), fetchCode)
	return nil
}
