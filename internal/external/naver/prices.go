package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DH-11027/paradise/internal/series"
)

// FetchPrices fetches the daily OHLCV series for a stock from the Naver
// chart API, oldest first.
// ⭐ SSOT: Naver Finance 가격 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, stockCode string, from, to time.Time) ([]series.PriceBar, error) {
	fromStr := strings.ReplaceAll(from.Format("2006-01-02"), "-", "")
	toStr := strings.ReplaceAll(to.Format("2006-01-02"), "-", "")

	url := fmt.Sprintf(
		"%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		chartBaseURL, stockCode, fromStr, toStr,
	)

	body, err := c.fetchBody(ctx, url)
	if err != nil {
		return nil, err
	}

	bars, err := parsePriceResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse price response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(bars),
	}).Debug("Fetched prices")
	return bars, nil
}

// parsePriceResponse parses the chart API payload. The endpoint returns
// a JS-style array with single quotes; normalize then try JSON, falling
// back to row-regex extraction.
func parsePriceResponse(body string) ([]series.PriceBar, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceRows(rawData), nil
	}
	return parsePriceRegex(body), nil
}

func parsePriceRows(rawData [][]interface{}) []series.PriceBar {
	var bars []series.PriceBar
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // header row
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, ok := canonicalDate(strings.Trim(dateStr, "\""))
		if !ok {
			continue
		}

		bars = append(bars, series.PriceBar{
			Date:   date,
			Open:   toFloat(row[1]),
			High:   toFloat(row[2]),
			Low:    toFloat(row[3]),
			Close:  toFloat(row[4]),
			Volume: toFloat(row[5]),
		})
	}
	return bars
}

var priceRowRe = regexp.MustCompile(`\["(\d{8})",\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+)\]`)

func parsePriceRegex(body string) []series.PriceBar {
	var bars []series.PriceBar
	for _, match := range priceRowRe.FindAllStringSubmatch(body, -1) {
		date, ok := canonicalDate(match[1])
		if !ok {
			continue
		}

		open, _ := strconv.ParseFloat(match[2], 64)
		high, _ := strconv.ParseFloat(match[3], 64)
		low, _ := strconv.ParseFloat(match[4], 64)
		closeP, _ := strconv.ParseFloat(match[5], 64)
		volume, _ := strconv.ParseFloat(match[6], 64)

		bars = append(bars, series.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		})
	}
	return bars
}

// canonicalDate converts YYYYMMDD to the canonical YYYY-MM-DD key,
// rejecting anything that does not parse as a real date.
func canonicalDate(s string) (string, bool) {
	if len(s) == 8 {
		s = s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
