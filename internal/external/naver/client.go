// Package naver fetches daily prices and investor flows from Naver
// Finance and converts them into the canonical series records.
package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/DH-11027/paradise/pkg/config"
	"github.com/DH-11027/paradise/pkg/httputil"
	"github.com/DH-11027/paradise/pkg/logger"
)

const chartBaseURL = "https://fchart.stock.naver.com"

// Client handles communication with Naver Finance.
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
	baseURL    string
	maxPages   int
}

// NewClient creates a new Naver Finance client. Requests are throttled
// to cfg.RequestsPerSec across all fetch methods.
func NewClient(httpClient *httputil.Client, cfg config.NaverConfig, log *logger.Logger) *Client {
	httpClient.
		WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36").
		WithHeader("Referer", "https://finance.naver.com/")

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "naver"),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		baseURL:    cfg.BaseURL,
		maxPages:   cfg.MaxPages,
	}
}

// fetchBody performs a throttled GET and returns the response body.
func (c *Client) fetchBody(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body failed: %w", err)
	}
	return string(body), nil
}
