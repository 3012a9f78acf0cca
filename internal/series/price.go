package series

import (
	"sort"
	"strings"

	"github.com/DH-11027/paradise/internal/csvio"
)

// Column aliases accepted on price uploads. KRX exports use the Korean
// headers; broker re-exports commonly use the English ones.
var priceAliases = map[string][]string{
	"date":        {"날짜", "date", "Date", "일자"},
	"open":        {"시가", "open", "Open"},
	"high":        {"고가", "high", "High"},
	"low":         {"저가", "low", "Low"},
	"close":       {"종가", "close", "Close"},
	"volume":      {"거래량", "volume", "Volume"},
	"foreign":     {"외국인", "외국인순매수", "foreign", "Foreign"},
	"institution": {"기관", "기관합계", "기관순매수", "institution", "Institution"},
}

// resolveColumn finds the header in row that matches one of the aliases,
// exact match first, then a contains match for decorated headers like
// "종가(원)".
func resolveColumn(row csvio.Row, aliases []string) (string, bool) {
	for _, a := range aliases {
		if _, ok := row[a]; ok {
			return a, true
		}
	}
	for _, a := range aliases {
		for header := range row {
			if strings.Contains(header, a) {
				return header, true
			}
		}
	}
	return "", false
}

// LoadPrices parses a price CSV into chronological bars. Rows without a
// date or with a zero close are dropped. The parse report is returned for
// the upload diagnostics panel.
func LoadPrices(text string) ([]PriceBar, csvio.Report) {
	rows, report := csvio.Tokenize(text)
	if len(rows) == 0 {
		return nil, report
	}

	cols := map[string]string{}
	for field, aliases := range priceAliases {
		if header, ok := resolveColumn(rows[0], aliases); ok {
			cols[field] = header
		}
	}
	if _, ok := cols["date"]; !ok {
		// no recognizable date column, fall back to the first header
		if len(report.Headers) > 0 {
			cols["date"] = report.Headers[0]
		}
	}

	cell := func(row csvio.Row, field string) float64 {
		header, ok := cols[field]
		if !ok {
			return 0
		}
		return csvio.ToNumber(row[header])
	}

	bars := make([]PriceBar, 0, len(rows))
	for _, row := range rows {
		date := csvio.NormalizeDate(row[cols["date"]])
		closePx := cell(row, "close")
		if date == "" || closePx == 0 {
			continue
		}
		bars = append(bars, PriceBar{
			Date:        date,
			Open:        cell(row, "open"),
			High:        cell(row, "high"),
			Low:         cell(row, "low"),
			Close:       closePx,
			Volume:      cell(row, "volume"),
			Foreign:     cell(row, "foreign"),
			Institution: cell(row, "institution"),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return csvio.ParseDay(bars[i].Date).Before(csvio.ParseDay(bars[j].Date))
	})
	return bars, report
}
