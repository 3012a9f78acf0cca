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

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "CSV 파일 분석",
	Long: `가격/수급 CSV 파일을 병합하고 마지막 거래일의 신호를 계산합니다.

출력은 JSON: 보강된 시리즈, 파싱 리포트, 신호 분석.

Example:
  go run ./cmd/paradise analyze --price prices.csv --flow flows.csv
  go run ./cmd/paradise analyze --price merged.csv --anchor 120 --unit shares`,
	RunE: runAnalyze,
}

var (
	analyzePriceFile string
	analyzeFlowFile  string
	analyzeAnchor    int
	analyzeUnit      string
	analyzeFull      bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzePriceFile, "price", "", "가격 CSV 파일 (필수)")
	analyzeCmd.Flags().StringVar(&analyzeFlowFile, "flow", "", "수급 CSV 파일")
	analyzeCmd.Flags().IntVar(&analyzeAnchor, "anchor", 0, "VWAP 기준 인덱스")
	analyzeCmd.Flags().StringVar(&analyzeUnit, "unit", "", "수급 단위 (auto|currency|shares)")
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "전체 시리즈 포함 출력")
	analyzeCmd.MarkFlagRequired("price")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	priceCSV, err := os.ReadFile(analyzePriceFile)
	if err != nil {
		return fmt.Errorf("read price file: %w", err)
	}

	var flowCSV []byte
	if analyzeFlowFile != "" {
		if flowCSV, err = os.ReadFile(analyzeFlowFile); err != nil {
			return fmt.Errorf("read flow file: %w", err)
		}
	}

	processor := pipeline.New(log)
	res := processor.Process(string(priceCSV), string(flowCSV), pipeline.Options{
		AnchorIndex: analyzeAnchor,
		Flow:        series.FlowOptions{Unit: series.UnitMode(analyzeUnit)},
	})
	analysis := processor.Analyze(res.Series, -1)

	out := map[string]interface{}{
		"bars":     len(res.Series),
		"obvMax":   res.OBVMax,
		"reports":  res.Reports,
		"analysis": analysis,
	}
	if analyzeFull {
		out["series"] = res.Series
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
