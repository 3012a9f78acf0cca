package naver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DH-11027/paradise/internal/series"
)

// FetchInvestorFlow fetches daily investor net-buy records for a stock,
// walking the paginated 외국인/기관 page until it passes the from date or
// runs out of pages. Records come back oldest first.
// ⭐ SSOT: Naver Finance 수급 호출은 이 함수에서만
func (c *Client) FetchInvestorFlow(ctx context.Context, stockCode string, from, to time.Time) ([]series.FlowRecord, error) {
	var all []series.FlowRecord
	noDataPages := 0

	for page := 1; page <= c.maxPages; page++ {
		url := fmt.Sprintf("%s/item/frgn.naver?code=%s&page=%d", c.baseURL, stockCode, page)

		body, err := c.fetchBody(ctx, url)
		if err != nil {
			return all, err
		}

		flows, lastDate, hasMore := parseInvestorHTML(body, from, to)
		all = append(all, flows...)

		// pages run newest to oldest
		if !lastDate.IsZero() && lastDate.Before(from) {
			break
		}
		if !hasMore {
			break
		}

		if lastDate.IsZero() {
			noDataPages++
			if noDataPages >= 3 {
				break
			}
		} else {
			noDataPages = 0
		}
	}

	// reverse into chronological order for the merge step
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(all),
	}).Debug("Fetched investor flow")
	return all, nil
}

var investorDateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// parseInvestorHTML extracts flow rows from one 외국인/기관 page. The page
// reports net traded quantities; amounts are converted to currency with
// that day's close so they match the CSV loaders' canonical unit.
func parseInvestorHTML(html string, from, to time.Time) ([]series.FlowRecord, time.Time, bool) {
	var (
		flows    []series.FlowRecord
		lastDate time.Time
	)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return flows, lastDate, false
	}

	// the second type2 table carries the daily rows
	tables := doc.Find("table.type2")
	if tables.Length() < 2 {
		return flows, lastDate, false
	}

	tables.Eq(1).Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !investorDateRe.MatchString(dateText) {
			return
		}
		tradeDate, err := time.Parse("2006.01.02", dateText)
		if err != nil {
			return
		}
		lastDate = tradeDate

		if tradeDate.Before(from) || tradeDate.After(to) {
			return
		}

		// columns: 날짜 | 종가 | 대비 | 등락률 | 거래량 | 기관 | 외국인
		closePrice := parseCellNumber(cells.Eq(1).Text())
		instShares := parseCellNumber(cells.Eq(5).Text())
		foreignShares := parseCellNumber(cells.Eq(6).Text())

		instNet := instShares * closePrice
		foreignNet := foreignShares * closePrice
		retailNet := -(instNet + foreignNet)

		rec := series.FlowRecord{
			Date:             tradeDate.Format("2006-01-02"),
			InstitutionTotal: instNet,
			Foreign:          foreignNet,
			Retail:           retailNet,
		}
		rec.RecomputeTotals()
		flows = append(flows, rec)
	})

	hasMore := doc.Find(".pgRR").Length() > 0
	return flows, lastDate, hasMore
}

// parseCellNumber strips thousand separators and sign decoration from a
// table cell. Empty cells and lone dashes read as zero.
func parseCellNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseFloat(s, 64)
	return n
}
