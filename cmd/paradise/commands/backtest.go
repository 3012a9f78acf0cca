package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DH-11027/paradise/internal/pipeline"
	"github.com/DH-11027/paradise/internal/series"
	"github.com/DH-11027/paradise/pkg/config"
	"github.com/DH-11027/paradise/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "신호 백테스트 실행",
	Long: `CSV 파일을 병합한 뒤 매매 신호 백테스트를 실행합니다.

마지막 lookback 거래일 동안 신호를 따라 매수/매도한 결과를 JSON으로
출력합니다.

Example:
  go run ./cmd/paradise backtest --price prices.csv --flow flows.csv
  go run ./cmd/paradise backtest --price prices.csv --lookback 120`,
	RunE: runBacktest,
}

var (
	backtestPriceFile string
	backtestFlowFile  string
	backtestLookback  int
	backtestUnit      string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestPriceFile, "price", "", "가격 CSV 파일 (필수)")
	backtestCmd.Flags().StringVar(&backtestFlowFile, "flow", "", "수급 CSV 파일")
	backtestCmd.Flags().IntVar(&backtestLookback, "lookback", 60, "백테스트 기간 (거래일)")
	backtestCmd.Flags().StringVar(&backtestUnit, "unit", "", "수급 단위 (auto|currency|shares)")
	backtestCmd.MarkFlagRequired("price")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	priceCSV, err := os.ReadFile(backtestPriceFile)
	if err != nil {
		return fmt.Errorf("read price file: %w", err)
	}

	var flowCSV []byte
	if backtestFlowFile != "" {
		if flowCSV, err = os.ReadFile(backtestFlowFile); err != nil {
			return fmt.Errorf("read flow file: %w", err)
		}
	}

	processor := pipeline.New(log)
	res := processor.Process(string(priceCSV), string(flowCSV), pipeline.Options{
		Flow: series.FlowOptions{Unit: series.UnitMode(backtestUnit)},
	})

	result := processor.Backtest(res.Series, backtestLookback)
	if result == nil {
		return fmt.Errorf("not enough bars to backtest: have %d", len(res.Series))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
