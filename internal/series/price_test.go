package series

import "testing"

func TestLoadPricesKoreanHeaders(t *testing.T) {
	text := "날짜,시가,고가,저가,종가,거래량\n" +
		"2020-08-11,57000,58500,56800,58000,21000000\n" +
		"2020-08-10,56000,57600,55900,57400,25000000\n"

	bars, _ := LoadPrices(text)

	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Date != "2020-08-10" {
		t.Errorf("bars must be chronological, got first date %s", bars[0].Date)
	}
	if bars[0].Close != 57400 || bars[1].High != 58500 {
		t.Errorf("column mapping wrong: %+v", bars)
	}
}

func TestLoadPricesEnglishHeaders(t *testing.T) {
	text := "Date,Open,High,Low,Close,Volume\n2024-01-15,100,110,95,105,5000\n"

	bars, _ := LoadPrices(text)

	if len(bars) != 1 || bars[0].Close != 105 {
		t.Fatalf("english headers not resolved: %+v", bars)
	}
}

func TestLoadPricesDropsUnusableRows(t *testing.T) {
	text := "date,close\n2024-01-15,72500\n,73000\n2024-01-17,0\n2024-01-18,-\n"

	bars, _ := LoadPrices(text)

	if len(bars) != 1 {
		t.Fatalf("rows without date or finite close must be dropped, got %d", len(bars))
	}
	if bars[0].Date != "2024-01-15" {
		t.Errorf("surviving bar = %+v", bars[0])
	}
}

func TestLoadPricesNormalizesDates(t *testing.T) {
	text := "date,close\n2020/8/9,100\n2020-08-10T09:00:00,101\n"

	bars, _ := LoadPrices(text)

	if bars[0].Date != "2020-08-09" || bars[1].Date != "2020-08-10" {
		t.Errorf("dates not canonical: %s, %s", bars[0].Date, bars[1].Date)
	}
}

func TestLoadPricesCarriesFlowColumns(t *testing.T) {
	text := "date,close,외국인순매수,기관순매수\n2024-01-15,72500,1200000,-300000\n"

	bars, _ := LoadPrices(text)

	if bars[0].Foreign != 1200000 || bars[0].Institution != -300000 {
		t.Errorf("merged-upload flow columns lost: %+v", bars[0])
	}
}

func TestLoadPricesEmptyInput(t *testing.T) {
	for _, text := range []string{"", "date,close\n"} {
		if bars, _ := LoadPrices(text); len(bars) != 0 {
			t.Errorf("LoadPrices(%q) = %d bars, want 0", text, len(bars))
		}
	}
}
