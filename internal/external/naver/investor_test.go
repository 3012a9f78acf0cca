package naver

import (
	"testing"
	"time"
)

func TestParseInvestorHTML(t *testing.T) {
	sampleHTML := `
		<html>
		<body>
		<table class="type2">
			<tr><th>Header</th></tr>
		</table>
		<table class="type2">
			<tr>
				<td>2024.01.15</td>
				<td>72,500</td>
				<td>+500</td>
				<td>+0.69%</td>
				<td>1,000,000</td>
				<td>+50,000</td>
				<td>+30,000</td>
			</tr>
			<tr>
				<td>2024.01.16</td>
				<td>73,000</td>
				<td>+500</td>
				<td>+0.69%</td>
				<td>1,200,000</td>
				<td>-60,000</td>
				<td>+40,000</td>
			</tr>
			<tr>
				<td>invalid date</td>
				<td>73,000</td>
			</tr>
		</table>
		</body>
		</html>
	`

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	flows, lastDate, hasMore := parseInvestorHTML(sampleHTML, from, to)

	if len(flows) != 2 {
		t.Fatalf("parseInvestorHTML() got %d rows, want 2", len(flows))
	}

	first := flows[0]
	if first.Date != "2024-01-15" {
		t.Errorf("Date = %s, want 2024-01-15", first.Date)
	}
	// quantities converted to currency with the day's close
	if want := 50000 * 72500.0; first.InstitutionTotal != want {
		t.Errorf("InstitutionTotal = %f, want %f", first.InstitutionTotal, want)
	}
	if want := 30000 * 72500.0; first.Foreign != want {
		t.Errorf("Foreign = %f, want %f", first.Foreign, want)
	}
	if want := -(50000 + 30000) * 72500.0; first.Retail != want {
		t.Errorf("Retail = %f, want %f", first.Retail, want)
	}
	if first.ForeignTotal != first.Foreign {
		t.Errorf("ForeignTotal = %f, want %f", first.ForeignTotal, first.Foreign)
	}

	if flows[1].InstitutionTotal >= 0 {
		t.Errorf("InstitutionTotal = %f, want negative", flows[1].InstitutionTotal)
	}

	if lastDate.IsZero() {
		t.Error("parseInvestorHTML() lastDate is zero")
	}
	if hasMore {
		t.Error("parseInvestorHTML() hasMore = true, want false")
	}
}

func TestParseInvestorHTMLNoTables(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	flows, lastDate, hasMore := parseInvestorHTML("<html><body></body></html>", from, to)

	if len(flows) != 0 {
		t.Errorf("parseInvestorHTML() got %d rows, want 0", len(flows))
	}
	if !lastDate.IsZero() {
		t.Error("parseInvestorHTML() lastDate should be zero")
	}
	if hasMore {
		t.Error("parseInvestorHTML() hasMore = true, want false")
	}
}

func TestParseInvestorHTMLDateFilter(t *testing.T) {
	html := `
		<html>
		<body>
		<table class="type2"></table>
		<table class="type2">
			<tr>
				<td>2024.01.15</td>
				<td>72,500</td>
				<td>+500</td>
				<td>+0.69%</td>
				<td>1,000,000</td>
				<td>+50,000</td>
				<td>+30,000</td>
			</tr>
			<tr>
				<td>2024.02.15</td>
				<td>73,000</td>
				<td>+500</td>
				<td>+0.69%</td>
				<td>1,200,000</td>
				<td>+60,000</td>
				<td>+40,000</td>
			</tr>
		</table>
		</body>
		</html>
	`

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	flows, _, _ := parseInvestorHTML(html, from, to)

	if len(flows) != 1 {
		t.Fatalf("parseInvestorHTML() with date filter got %d rows, want 1", len(flows))
	}
	if flows[0].Date != "2024-01-15" {
		t.Errorf("filtered date = %s, want 2024-01-15", flows[0].Date)
	}
}

func TestParseCellNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"+50,000", 50000},
		{"-60,000", -60000},
		{"72,500", 72500},
		{"-", 0},
		{"", 0},
		{"  +1,234  ", 1234},
	}

	for _, tt := range tests {
		if got := parseCellNumber(tt.in); got != tt.want {
			t.Errorf("parseCellNumber(%q) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
