package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeBars() []PriceBar {
	return []PriceBar{
		{Date: "2020-08-10", Open: 56000, High: 57600, Low: 55900, Close: 57400, Volume: 25000000},
		{Date: "2020-08-11", Open: 57000, High: 58500, Low: 56800, Close: 58000, Volume: 21000000},
		{Date: "2020-08-12", Open: 58000, High: 58200, Low: 56500, Close: 56800, Volume: 19000000},
	}
}

// Flow series covering only the first two days: the third bar carries an
// all-zero snapshot while the cumulative total holds at the 08-11 level.
func TestMergeMissingFlowDay(t *testing.T) {
	flows := []FlowRecord{
		{Date: "2020-08-10", Foreign: 1000, OtherForeign: 100, Retail: -500, InstitutionTotal: 200, ForeignTotal: 1100},
		{Date: "2020-08-11", Foreign: -400, Retail: 300, InstitutionTotal: -50, ForeignTotal: -400},
	}

	merged := Merge(threeBars(), flows)

	require.Len(t, merged, 3)

	last := merged[2]
	assert.Equal(t, FlowRecord{Date: "2020-08-12"}, last.Flows, "day without flow data gets a zero snapshot")
	assert.Equal(t, 700.0, last.Cum.ForeignTotal)
	assert.Equal(t, 150.0, last.Cum.InstitutionTotal)
	assert.Equal(t, -200.0, last.Cum.Retail)
	assert.Equal(t, merged[1].Cum, FlowRecord{
		Date: "2020-08-11", Foreign: 600, OtherForeign: 100, Retail: -200,
		InstitutionTotal: 150, ForeignTotal: 700,
	})
}

func TestMergeLengthMatchesPrices(t *testing.T) {
	prices := threeBars()

	for _, flows := range [][]FlowRecord{
		nil,
		{{Date: "2020-08-11", Foreign: 1}},
		{{Date: "2020-08-10", Foreign: 1}, {Date: "2020-08-11", Foreign: 2}, {Date: "2020-08-12", Foreign: 3}, {Date: "2020-08-13", Foreign: 4}},
	} {
		merged := Merge(prices, flows)
		assert.Len(t, merged, len(prices))
	}
}

func TestMergeDropsUnmatchedFlowDates(t *testing.T) {
	flows := []FlowRecord{{Date: "2020-09-01", Foreign: 999, ForeignTotal: 999}}

	merged := Merge(threeBars(), flows)

	for _, bar := range merged {
		assert.Zero(t, bar.Cum.ForeignTotal, "flow dates outside the price series never join")
	}
}

func TestMergeCumulativeConsistency(t *testing.T) {
	flows := []FlowRecord{
		{Date: "2020-08-10", FinancialInvestment: 10, Insurance: 20, Retail: -5, Foreign: 7, InstitutionTotal: 30, ForeignTotal: 7},
		{Date: "2020-08-11", FinancialInvestment: -3, Pension: 4, Retail: 2, OtherForeign: 1, InstitutionTotal: 1, ForeignTotal: 1},
		{Date: "2020-08-12", Bank: 9, Retail: 8, Foreign: -2, InstitutionTotal: 9, ForeignTotal: -2},
	}

	merged := Merge(threeBars(), flows)

	for i := 1; i < len(merged); i++ {
		prev := merged[i-1].Cum
		prev.Add(merged[i].Flows)
		prev.Date = merged[i].Date
		assert.Equal(t, merged[i].Cum, prev, "cum[i] must equal cum[i-1] + flows[i] at bar %d", i)
	}
}

func TestMergeMirroredScalars(t *testing.T) {
	flows := []FlowRecord{{Date: "2020-08-10", Foreign: 100, OtherForeign: 10, Retail: -40, InstitutionTotal: 60, ForeignTotal: 110}}

	merged := Merge(threeBars(), flows)

	first := merged[0]
	assert.Equal(t, 110.0, first.ForeignNet)
	assert.Equal(t, 60.0, first.InstNet)
	assert.Equal(t, -40.0, first.PersonNet)
	assert.Equal(t, first.Cum.ForeignTotal, first.CumForeign)
	assert.Equal(t, first.Cum.InstitutionTotal, first.CumInst)
	assert.Equal(t, first.Cum.Retail, first.CumPerson)
}

func TestMergeDuplicateFlowDatesLastWins(t *testing.T) {
	flows := []FlowRecord{
		{Date: "2020-08-10", Foreign: 1, ForeignTotal: 1},
		{Date: "2020-08-10", Foreign: 5, ForeignTotal: 5},
	}

	merged := Merge(threeBars(), flows)

	assert.Equal(t, 5.0, merged[0].Flows.ForeignTotal)
}
