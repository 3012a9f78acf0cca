// Package pipeline wires the CSV loaders, the merge step and the
// indicator/signal engines into the dashboard entrypoints.
package pipeline

import (
	"github.com/DH-11027/paradise/internal/csvio"
	"github.com/DH-11027/paradise/internal/indicator"
	"github.com/DH-11027/paradise/internal/series"
	"github.com/DH-11027/paradise/internal/signal"
	"github.com/DH-11027/paradise/pkg/logger"
)

// Flow source tiers, in the order they are tried.
const (
	FlowSourceCategories = "categories"
	FlowSourceSimple     = "simple"
	FlowSourcePrice      = "price-columns"
	FlowSourceNone       = "none"
)

// Options tunes one pipeline run. The zero value anchors the VWAP at the
// first bar and auto-detects the flow unit.
type Options struct {
	AnchorIndex int
	Flow        series.FlowOptions
}

// Reports collects the parse diagnostics for the upload panel.
type Reports struct {
	Price      csvio.Report       `json:"price"`
	Flow       series.ParseReport `json:"flow"`
	FlowSource string             `json:"flowSource"`
}

// Result is the fully enriched series with its diagnostics.
type Result struct {
	Series  []indicator.Bar `json:"series"`
	OBVMax  float64         `json:"obvMax"`
	Reports Reports         `json:"reports"`
}

// Processor runs the ingestion pipeline. Malformed input degrades to an
// empty or zero-filled result; it never returns an error.
type Processor struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Processor {
	return &Processor{log: log}
}

// Process loads the price CSV, resolves investor flows through the tier
// chain, merges both series and computes the indicator set anchored at
// opts.AnchorIndex.
//
// Flow tiers: the category parser chain first, then the two-column
// summary parser, and as a last resort flow columns carried on the price
// CSV itself. A run with no usable flow source still yields the full
// price series with zero flow snapshots.
func (p *Processor) Process(priceCSV, flowCSV string, opts Options) *Result {
	prices, priceReport := series.LoadPrices(priceCSV)
	if len(prices) == 0 {
		p.log.Warn("pipeline: no usable price rows")
		return &Result{Series: []indicator.Bar{}, Reports: Reports{Price: priceReport, FlowSource: FlowSourceNone}}
	}

	flows, flowReport, source := p.resolveFlows(flowCSV, prices, opts.Flow)
	p.log.WithFields(map[string]interface{}{
		"prices":     len(prices),
		"flows":      len(flows),
		"flowSource": source,
	}).Debug("pipeline: merged input series")

	merged := series.Merge(prices, flows)
	res := indicator.Compute(merged, opts.AnchorIndex)

	return &Result{
		Series: res.Data,
		OBVMax: res.OBVMax,
		Reports: Reports{
			Price:      priceReport,
			Flow:       flowReport,
			FlowSource: source,
		},
	}
}

// ProcessRecords runs merge and indicator enrichment over already-canonical
// records, bypassing the CSV tier chain. Used for stored and fetched series.
func (p *Processor) ProcessRecords(prices []series.PriceBar, flows []series.FlowRecord, opts Options) *Result {
	source := FlowSourceCategories
	if len(flows) == 0 {
		source = FlowSourceNone
	}
	if len(prices) == 0 {
		return &Result{Series: []indicator.Bar{}, Reports: Reports{FlowSource: FlowSourceNone}}
	}

	merged := series.Merge(prices, flows)
	res := indicator.Compute(merged, opts.AnchorIndex)

	return &Result{
		Series:  res.Data,
		OBVMax:  res.OBVMax,
		Reports: Reports{FlowSource: source},
	}
}

// resolveFlows walks the flow source tiers until one yields records.
func (p *Processor) resolveFlows(flowCSV string, prices []series.PriceBar, opts series.FlowOptions) ([]series.FlowRecord, series.ParseReport, string) {
	if flowCSV != "" {
		flows, report := series.LoadFlows(flowCSV, prices, opts)
		if len(flows) > 0 {
			return flows, report, FlowSourceCategories
		}

		simple, simpleReport := series.LoadSimpleFlows(flowCSV)
		if len(simple) > 0 {
			return simple, series.ParseReport{Report: simpleReport, Strategy: FlowSourceSimple}, FlowSourceSimple
		}
	}

	if derived := deriveFromPrices(prices); len(derived) > 0 {
		return derived, series.ParseReport{Strategy: FlowSourcePrice}, FlowSourcePrice
	}
	return nil, series.ParseReport{}, FlowSourceNone
}

// deriveFromPrices salvages foreign/institution columns from a merged
// single-CSV upload. Amounts are taken as-is; a price file carries
// currency, not share counts.
func deriveFromPrices(prices []series.PriceBar) []series.FlowRecord {
	records := make([]series.FlowRecord, 0, len(prices))
	for _, b := range prices {
		if b.Foreign == 0 && b.Institution == 0 {
			continue
		}
		records = append(records, series.FlowRecord{
			Date:             b.Date,
			Foreign:          b.Foreign,
			InstitutionTotal: b.Institution,
			ForeignTotal:     b.Foreign,
		})
	}
	if len(records) == 0 {
		return nil
	}
	return records
}

// Analysis is the signal-layer readout at one bar of a processed series.
type Analysis struct {
	Index        int                  `json:"index"`
	Regime       signal.Regime        `json:"marketRegime"`
	SmartMoney   signal.SmartMoney    `json:"smartMoney"`
	Trading      signal.TradingSignal `json:"tradingSignal"`
	Signals      *signal.SignalSet    `json:"signals"`
	ChartScore   indicator.Score      `json:"chartScore"`
	Accumulation signal.Pattern       `json:"accumulation"`
	Breakout     signal.Pattern       `json:"breakout"`
	Reversal     signal.Pattern       `json:"reversal"`
	Distribution signal.Pattern       `json:"distribution"`
}

// Analyze evaluates every signal engine at index; index < 0 targets the
// last bar. A nil result means the series is empty.
func (p *Processor) Analyze(data []indicator.Bar, index int) *Analysis {
	if len(data) == 0 {
		return nil
	}
	if index < 0 || index >= len(data) {
		index = len(data) - 1
	}

	return &Analysis{
		Index:        index,
		Regime:       signal.DetectMarketRegime(data, index),
		SmartMoney:   signal.SmartMoneyScore(data, index),
		Trading:      signal.InstitutionalTradingSignal(data, index),
		Signals:      signal.GenerateTradingSignals(data, index),
		ChartScore:   indicator.SignalScore(data, index),
		Accumulation: signal.DetectAccumulationPattern(data, index),
		Breakout:     signal.DetectBreakoutPattern(data, index),
		Reversal:     signal.DetectReversalPattern(data, index),
		Distribution: signal.DetectDistributionPattern(data, index),
	}
}

// Backtest runs the walk-forward simulation over a processed series.
func (p *Processor) Backtest(data []indicator.Bar, lookback int) *signal.BacktestResult {
	return signal.Backtest(data, lookback)
}
