package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DH-11027/paradise/internal/series"
	"github.com/DH-11027/paradise/pkg/logger"
)

func newProcessor() *Processor {
	return New(logger.Nop())
}

const priceCSV = "날짜,시가,고가,저가,종가,거래량\n" +
	"2020-08-10,56000,57600,55900,57400,25000000\n" +
	"2020-08-11,57000,58500,56800,58000,21000000\n" +
	"2020-08-12,58000,58200,56500,56800,19000000\n"

const flowCSV = "날짜,금융투자,보험,투신,사모,은행,기타금융,연기금,기타법인,개인,외국인,기타외국인,기관합계\n" +
	"2020-08-10,-1.1E+09,-3.3E+08,-2.3E+08,44312800,0,0,8486650,143419300,5094342700,-3.6E+09,10170600,\n" +
	"2020-08-11,2.0E+08,0,0,0,0,0,0,0,-1.0E+08,1.5E+08,0,2.0E+08\n"

func TestProcessMergesPriceAndFlow(t *testing.T) {
	res := newProcessor().Process(priceCSV, flowCSV, Options{})

	require.Len(t, res.Series, 3)
	assert.Equal(t, FlowSourceCategories, res.Reports.FlowSource)
	assert.Equal(t, "korean-headers", res.Reports.Flow.Strategy)
	assert.Equal(t, ",", res.Reports.Price.Separator)

	// day without flow data keeps the prior cumulative total
	last := res.Series[2]
	assert.Zero(t, last.Flows.ForeignTotal)
	assert.Equal(t, res.Series[1].Cum.ForeignTotal, last.Cum.ForeignTotal)
}

func TestProcessEmptyPrice(t *testing.T) {
	res := newProcessor().Process("", flowCSV, Options{})

	assert.Empty(t, res.Series)
	assert.Equal(t, FlowSourceNone, res.Reports.FlowSource)
}

func TestProcessWithoutFlowCSV(t *testing.T) {
	res := newProcessor().Process(priceCSV, "", Options{})

	require.Len(t, res.Series, 3)
	assert.Equal(t, FlowSourceNone, res.Reports.FlowSource)
	for _, bar := range res.Series {
		assert.Zero(t, bar.Flows.ForeignTotal)
	}
}

func TestProcessSimpleFlowFallback(t *testing.T) {
	simple := "date,ForeignNetBuy,InstitutionNetBuy\n2020-08-10,1200000,-300000\n"

	res := newProcessor().Process(priceCSV, simple, Options{})

	assert.Equal(t, FlowSourceSimple, res.Reports.FlowSource)
	assert.Equal(t, 1200000.0, res.Series[0].Flows.ForeignTotal)
	assert.Equal(t, -300000.0, res.Series[0].Flows.InstitutionTotal)
}

func TestProcessDerivesFlowsFromPriceColumns(t *testing.T) {
	merged := "날짜,종가,거래량,외국인순매수,기관순매수\n" +
		"2020-08-10,57400,25000000,1500000,-200000\n" +
		"2020-08-11,58000,21000000,-800000,100000\n"

	res := newProcessor().Process(merged, "", Options{})

	require.Len(t, res.Series, 2)
	assert.Equal(t, FlowSourcePrice, res.Reports.FlowSource)
	assert.Equal(t, 1500000.0, res.Series[0].Flows.ForeignTotal)
	assert.Equal(t, -200000.0, res.Series[0].Flows.InstitutionTotal)
	assert.Equal(t, 700000.0, res.Series[1].Cum.ForeignTotal)
}

func TestProcessRecordsSkipsCSVTiers(t *testing.T) {
	prices := []series.PriceBar{
		{Date: "2020-08-10", Open: 56000, High: 57600, Low: 55900, Close: 57400, Volume: 25000000},
		{Date: "2020-08-11", Open: 57000, High: 58500, Low: 56800, Close: 58000, Volume: 21000000},
	}
	flows := []series.FlowRecord{
		{Date: "2020-08-10", Foreign: 1500000, InstitutionTotal: -200000, ForeignTotal: 1500000},
	}

	res := newProcessor().ProcessRecords(prices, flows, Options{})

	require.Len(t, res.Series, 2)
	assert.Equal(t, FlowSourceCategories, res.Reports.FlowSource)
	assert.Equal(t, 1500000.0, res.Series[0].Flows.ForeignTotal)

	empty := newProcessor().ProcessRecords(nil, flows, Options{})
	assert.Empty(t, empty.Series)
	assert.Equal(t, FlowSourceNone, empty.Reports.FlowSource)
}

func TestProcessAnchorsVWAP(t *testing.T) {
	res := newProcessor().Process(priceCSV, "", Options{AnchorIndex: 1})

	assert.Nil(t, res.Series[0].AVWAP)
	assert.NotNil(t, res.Series[1].AVWAP)
}

func TestProcessGarbageNeverPanics(t *testing.T) {
	inputs := []string{"", "\n\n", "garbage", strings.Repeat("a,b\n", 3), "날짜\n2020-08-10\n"}

	for _, in := range inputs {
		res := newProcessor().Process(in, in, Options{})
		assert.NotNil(t, res)
	}
}

func TestAnalyzeDefaultsToLastBar(t *testing.T) {
	p := newProcessor()
	res := p.Process(priceCSV, flowCSV, Options{})

	got := p.Analyze(res.Series, -1)

	require.NotNil(t, got)
	assert.Equal(t, len(res.Series)-1, got.Index)
	// three bars is far below every signal minimum: all neutral defaults
	assert.Equal(t, 50.0, got.SmartMoney.Score)
	assert.Nil(t, got.Signals)

	assert.Nil(t, p.Analyze(nil, 0))
}

func TestBacktestPassthrough(t *testing.T) {
	p := newProcessor()
	res := p.Process(priceCSV, flowCSV, Options{})

	assert.Nil(t, p.Backtest(res.Series, 60), "three bars cannot be backtested")
}
