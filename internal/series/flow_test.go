package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const krxHeader = "날짜,금융투자,보험,투신,사모,은행,기타금융,연기금,기타법인,개인,외국인,기타외국인,기관합계"

// KRX row with scientific notation amounts and an empty 기관합계 cell.
func TestLoadFlowsScientificNotationAndInstitutionTotal(t *testing.T) {
	text := krxHeader + "\n" +
		"2020-08-10,-1.1E+09,-3.3E+08,-2.3E+08,44312800,0,0,8486650,143419300,5094342700,-3.6E+09,10170600,\n"

	records, report := LoadFlows(text, nil, FlowOptions{})

	require.Len(t, records, 1)
	assert.Equal(t, "korean-headers", report.Strategy)

	rec := records[0]
	assert.Equal(t, -1.1e9, rec.FinancialInvestment)
	assert.Equal(t, -3.6e9, rec.Foreign)

	wantInst := rec.FinancialInvestment + rec.Insurance + rec.InvestmentTrust +
		rec.PrivateEquity + rec.Bank + rec.OtherFinance + rec.Pension + rec.OtherCorporation
	assert.Equal(t, wantInst, rec.InstitutionTotal, "empty 기관합계 must be rebuilt from the 8 sub-categories")
	assert.Equal(t, rec.Foreign+rec.OtherForeign, rec.ForeignTotal)
}

// Space-delimited paste of the same 12 fields.
func TestLoadFlowsWhitespaceDelimited(t *testing.T) {
	text := "날짜 금융투자 보험 투신 사모 은행 기타금융 연기금 기타법인 개인 외국인 기타외국인 기관합계\n" +
		"2020-08-10 -1100000000 -330000000 -230000000 44312800 0 0 8486650 143419300 5094342700 -3600000000 10170600 -1463781250\n"

	records, _ := LoadFlows(text, nil, FlowOptions{})

	require.Len(t, records, 1)
	assert.Equal(t, -1463781250.0, records[0].InstitutionTotal)
	assert.False(t, math.IsNaN(records[0].InstitutionTotal))
}

func TestLoadFlowsEnglishAliases(t *testing.T) {
	text := "Date,Securities,Insurance,InvestmentTrust,Pension,Individual,Foreigner,OtherForeigner\n" +
		"2024-01-15,1000,2000,3000,4000,-5000,6000,500\n"

	records, report := LoadFlows(text, nil, FlowOptions{})

	require.Len(t, records, 1)
	assert.Equal(t, "alias-headers", report.Strategy)
	assert.Equal(t, 1000.0, records[0].FinancialInvestment)
	assert.Equal(t, 6500.0, records[0].ForeignTotal)
	assert.Equal(t, 10000.0, records[0].InstitutionTotal, "institution total from the present sub-categories")
}

// Max absolute category value of 50,000 classifies as share counts; every
// value is multiplied by the matching-date close.
func TestLoadFlowsShareUnitConversion(t *testing.T) {
	text := krxHeader + "\n" +
		"2020-08-10,-1100,0,0,0,0,0,0,0,50000,3600,100,-1100\n" +
		"2020-08-11,200,0,0,0,0,0,0,0,-300,400,0,200\n"
	prices := []PriceBar{
		{Date: "2020-08-10", Close: 57400},
		{Date: "2020-08-11", Close: 58000},
	}

	records, report := LoadFlows(text, prices, FlowOptions{})

	require.Len(t, records, 2)
	assert.Equal(t, string(UnitShares), report.Unit)
	assert.Equal(t, 2, report.Converted)
	assert.Equal(t, -1100.0*57400, records[0].FinancialInvestment)
	assert.Equal(t, 50000.0*57400, records[0].Retail)
	assert.Equal(t, (3600.0+100)*57400, records[0].ForeignTotal, "foreign total rederived after conversion")
	assert.Equal(t, 400.0*58000, records[1].Foreign)
}

func TestLoadFlowsShareUnitNoPriceMatch(t *testing.T) {
	text := krxHeader + "\n2020-08-10,-1100,0,0,0,0,0,0,0,50000,3600,100,-1100\n"
	prices := []PriceBar{{Date: "2020-08-11", Close: 58000}}

	records, report := LoadFlows(text, prices, FlowOptions{})

	require.Len(t, records, 1)
	assert.Equal(t, 0, report.Converted)
	assert.Equal(t, -1100.0, records[0].FinancialInvestment, "no same-date close, amounts stay unconverted")
}

func TestLoadFlowsUnitOverride(t *testing.T) {
	text := krxHeader + "\n2020-08-10,-1100,0,0,0,0,0,0,0,50000,3600,100,-1100\n"
	prices := []PriceBar{{Date: "2020-08-10", Close: 57400}}

	records, report := LoadFlows(text, prices, FlowOptions{Unit: UnitCurrency})

	assert.Equal(t, string(UnitCurrency), report.Unit)
	assert.Equal(t, -1100.0, records[0].FinancialInvestment, "explicit currency override skips conversion")
}

func TestLoadFlowsCurrencyMagnitudesNotConverted(t *testing.T) {
	text := krxHeader + "\n2020-08-10,-1.1E+09,0,0,0,0,0,0,0,5094342700,-3.6E+09,10170600,\n"
	prices := []PriceBar{{Date: "2020-08-10", Close: 57400}}

	records, report := LoadFlows(text, prices, FlowOptions{})

	assert.Equal(t, string(UnitCurrency), report.Unit)
	assert.Equal(t, -1.1e9, records[0].FinancialInvestment)
}

func TestLoadFlowsRoundTripAggregate(t *testing.T) {
	text := krxHeader + "\n" +
		"2020-08-10,100,200,300,400,500,600,700,800,-900,1000,50,\n" +
		"2020-08-11,1,2,3,4,5,6,7,8,9,10,11,7777\n"

	records, _ := LoadFlows(text, nil, FlowOptions{})

	require.Len(t, records, 2)
	assert.Equal(t, 3600.0, records[0].InstitutionTotal, "zero source total rebuilt from sub-categories")
	assert.Equal(t, 7777.0, records[1].InstitutionTotal, "nonzero source total kept")
	for _, rec := range records {
		assert.Equal(t, rec.Foreign+rec.OtherForeign, rec.ForeignTotal)
	}
}

func TestLoadSimpleFlows(t *testing.T) {
	text := "date,ForeignNetBuy,InstitutionNetBuy\n2024-01-15,1200000,-300000\n"

	records, _ := LoadSimpleFlows(text)

	require.Len(t, records, 1)
	assert.Equal(t, 1200000.0, records[0].Foreign)
	assert.Equal(t, 1200000.0, records[0].ForeignTotal)
	assert.Equal(t, -300000.0, records[0].InstitutionTotal)
}

func TestLoadSimpleFlowsRejectsUnrelatedCSV(t *testing.T) {
	records, _ := LoadSimpleFlows("a,b\n1,2\n")
	assert.Empty(t, records)
}

func TestLoadFlowsEmptyInput(t *testing.T) {
	records, report := LoadFlows("", nil, FlowOptions{})
	assert.Empty(t, records)
	assert.Empty(t, report.Strategy)
}
