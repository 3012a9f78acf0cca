package series

import (
	"sort"
	"strings"

	"github.com/DH-11027/paradise/internal/csvio"
)

// UnitMode controls how flow amounts are interpreted.
type UnitMode string

const (
	// UnitAuto inspects the first record and converts share counts to
	// currency using the same-day close.
	UnitAuto UnitMode = "auto"
	// UnitCurrency treats amounts as KRW and skips conversion.
	UnitCurrency UnitMode = "currency"
	// UnitShares forces share-count interpretation.
	UnitShares UnitMode = "shares"
)

// FlowOptions tunes the flow loader. The zero value means auto-detect.
type FlowOptions struct {
	Unit UnitMode
}

// ParseReport records which parser tier accepted the flow CSV and what unit
// handling was applied, for the upload diagnostics panel.
type ParseReport struct {
	csvio.Report
	Strategy  string `json:"strategy"`
	Unit      string `json:"unit"`
	Converted int    `json:"converted"`
}

// shareUnitThreshold separates share counts from KRW amounts. Daily
// per-category net buying on a liquid KRX name runs well past this in won
// but essentially never in shares.
const shareUnitThreshold = 1_000_000

// flowField binds header aliases to a FlowRecord category. Korean names
// first; the English names appear in broker re-exports.
type flowField struct {
	korean  string
	aliases []string
	set     func(*FlowRecord, float64)
}

var flowFields = []flowField{
	{"금융투자", []string{"Securities", "FinancialInvestment"}, func(f *FlowRecord, v float64) { f.FinancialInvestment = v }},
	{"보험", []string{"Insurance"}, func(f *FlowRecord, v float64) { f.Insurance = v }},
	{"투신", []string{"InvestmentTrust"}, func(f *FlowRecord, v float64) { f.InvestmentTrust = v }},
	{"사모", []string{"사모펀드", "PrivateEquity"}, func(f *FlowRecord, v float64) { f.PrivateEquity = v }},
	{"은행", []string{"Bank"}, func(f *FlowRecord, v float64) { f.Bank = v }},
	{"기타금융", []string{"OtherFinance"}, func(f *FlowRecord, v float64) { f.OtherFinance = v }},
	{"연기금", []string{"연기금 등", "Pension"}, func(f *FlowRecord, v float64) { f.Pension = v }},
	{"기타법인", []string{"OtherCorporation"}, func(f *FlowRecord, v float64) { f.OtherCorporation = v }},
	{"개인", []string{"Individual"}, func(f *FlowRecord, v float64) { f.Retail = v }},
	{"외국인", []string{"Foreigner", "Foreign"}, func(f *FlowRecord, v float64) { f.Foreign = v }},
	{"기타외국인", []string{"OtherForeigner"}, func(f *FlowRecord, v float64) { f.OtherForeign = v }},
	{"기관합계", []string{"기관", "InstitutionTotal"}, func(f *FlowRecord, v float64) { f.InstitutionTotal = v }},
}

var flowDateAliases = []string{"날짜", "date", "Date", "일자"}

// LoadFlows parses an investor-flow CSV, trying parser strategies in order
// until one yields records: exact Korean headers, alias-normalized headers,
// then a whitespace-coerced retry. Unit handling follows opts.Unit; auto
// detection converts share counts to KRW using the same-day close from
// prices. Institution and foreign totals are rederived where needed.
func LoadFlows(text string, prices []PriceBar, opts FlowOptions) ([]FlowRecord, ParseReport) {
	type strategy struct {
		name  string
		parse func(string) ([]FlowRecord, csvio.Report)
	}
	strategies := []strategy{
		{"korean-headers", parseKoreanFlows},
		{"alias-headers", parseAliasFlows},
		{"whitespace-coerced", func(s string) ([]FlowRecord, csvio.Report) {
			return parseAliasFlows(coerceWhitespace(s))
		}},
	}

	var records []FlowRecord
	var report ParseReport
	for _, st := range strategies {
		recs, rep := st.parse(text)
		if len(recs) > 0 {
			records, report.Report, report.Strategy = recs, rep, st.name
			break
		}
		report.Report = rep
	}
	if len(records) == 0 {
		return nil, report
	}

	for i := range records {
		records[i].RecomputeTotals()
	}

	report.Unit = string(UnitCurrency)
	shares := opts.Unit == UnitShares ||
		(opts.Unit == "" || opts.Unit == UnitAuto) && detectShareUnit(records)
	if shares {
		report.Unit = string(UnitShares)
		report.Converted = convertToCurrency(records, prices)
	}
	return records, report
}

// parseKoreanFlows handles the native KRX export with exact Korean category
// headers. It only claims the file when at least one category column is
// present, so alias handling stays a separate tier.
func parseKoreanFlows(text string) ([]FlowRecord, csvio.Report) {
	rows, report := csvio.Tokenize(text)
	if len(rows) == 0 {
		return nil, report
	}

	matched := false
	for _, f := range flowFields {
		if _, ok := rows[0][f.korean]; ok {
			matched = true
			break
		}
	}
	if !matched {
		return nil, report
	}

	dateCol := resolveFlowDate(rows[0], report.Headers)
	records := make([]FlowRecord, 0, len(rows))
	for _, row := range rows {
		date := csvio.NormalizeDate(row[dateCol])
		if date == "" {
			continue
		}
		rec := FlowRecord{Date: date}
		for _, f := range flowFields {
			f.set(&rec, csvio.ToNumber(row[f.korean]))
		}
		records = append(records, rec)
	}
	sortFlows(records)
	return records, report
}

// parseAliasFlows accepts both the Korean headers and their English aliases,
// with a contains match for decorated headers.
func parseAliasFlows(text string) ([]FlowRecord, csvio.Report) {
	rows, report := csvio.Tokenize(text)
	if len(rows) == 0 {
		return nil, report
	}

	cols := map[int]string{}
	for i, f := range flowFields {
		if header, ok := resolveColumn(rows[0], append([]string{f.korean}, f.aliases...)); ok {
			cols[i] = header
		}
	}
	if len(cols) == 0 {
		return nil, report
	}

	dateCol := resolveFlowDate(rows[0], report.Headers)
	records := make([]FlowRecord, 0, len(rows))
	for _, row := range rows {
		date := csvio.NormalizeDate(row[dateCol])
		if date == "" {
			continue
		}
		rec := FlowRecord{Date: date}
		for i, f := range flowFields {
			if header, ok := cols[i]; ok {
				f.set(&rec, csvio.ToNumber(row[header]))
			}
		}
		records = append(records, rec)
	}
	sortFlows(records)
	return records, report
}

// simpleFlowAliases cover two-column summaries that only carry foreign and
// institution net buying.
var simpleForeignAliases = []string{"외국인순매수", "외국인", "ForeignNetBuy", "ForeignNetBuy_MKRW", "Foreign", "foreign"}
var simpleInstAliases = []string{"기관순매수", "기관합계", "기관", "InstitutionNetBuy", "InstitutionNetBuy_MKRW", "Institution", "institution"}

// LoadSimpleFlows parses a two-column date/foreign/institution summary.
// The pipeline uses it as the last parser tier before deriving flows from
// price-file columns.
func LoadSimpleFlows(text string) ([]FlowRecord, csvio.Report) {
	rows, report := csvio.Tokenize(text)
	if len(rows) == 0 {
		return nil, report
	}

	foreignCol, okF := resolveColumn(rows[0], simpleForeignAliases)
	instCol, okI := resolveColumn(rows[0], simpleInstAliases)
	if !okF && !okI {
		return nil, report
	}

	dateCol := resolveFlowDate(rows[0], report.Headers)
	records := make([]FlowRecord, 0, len(rows))
	for _, row := range rows {
		date := csvio.NormalizeDate(row[dateCol])
		if date == "" {
			continue
		}
		rec := FlowRecord{Date: date}
		if okF {
			rec.Foreign = csvio.ToNumber(row[foreignCol])
		}
		if okI {
			rec.InstitutionTotal = csvio.ToNumber(row[instCol])
		}
		rec.ForeignTotal = rec.Foreign
		records = append(records, rec)
	}
	sortFlows(records)
	return records, report
}

// detectShareUnit decides whether amounts look like share counts: the first
// record's largest nonzero category magnitude stays below the threshold.
func detectShareUnit(records []FlowRecord) bool {
	if len(records) == 0 {
		return false
	}
	maxAbs := 0.0
	for _, v := range records[0].baseValues() {
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	return maxAbs > 0 && maxAbs < shareUnitThreshold
}

// convertToCurrency multiplies share counts by the same-day close. Records
// without a matching price bar are left as-is. Returns the number of
// converted records.
func convertToCurrency(records []FlowRecord, prices []PriceBar) int {
	closes := make(map[string]float64, len(prices))
	for _, b := range prices {
		closes[b.Date] = b.Close
	}

	converted := 0
	for i := range records {
		px, ok := closes[records[i].Date]
		if !ok || px == 0 {
			continue
		}
		records[i].Scale(px)
		converted++
	}
	return converted
}

func resolveFlowDate(row csvio.Row, headers []string) string {
	if header, ok := resolveColumn(row, flowDateAliases); ok {
		return header
	}
	if len(headers) > 0 {
		return headers[0]
	}
	return ""
}

func sortFlows(records []FlowRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return csvio.ParseDay(records[i].Date).Before(csvio.ParseDay(records[j].Date))
	})
}

// coerceWhitespace rewrites space-run separated lines into comma separated
// ones so the alias parser can retry fixed-width pastes.
func coerceWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), ",")
	}
	return strings.Join(lines, "\n")
}
