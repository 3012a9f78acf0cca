// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/DH-11027/paradise/internal/external/naver"
	"github.com/DH-11027/paradise/internal/pipeline"
	"github.com/DH-11027/paradise/internal/store"
	"github.com/DH-11027/paradise/pkg/logger"
	"github.com/DH-11027/paradise/pkg/redis"
)

// refreshWindowDays is how far back each refresh run reaches. Upserts
// make overlapping windows harmless.
const refreshWindowDays = 30

// Broadcaster pushes refreshed snapshots to websocket clients.
type Broadcaster interface {
	Broadcast(eventType, code string, data interface{})
}

// RefreshJob fetches, stores and recomputes the tracked codes daily.
// ⭐ SSOT: 일일 시리즈 갱신은 이 작업에서만
type RefreshJob struct {
	codes       []string
	schedule    string
	fetcher     *naver.Client
	store       *store.Store
	processor   *pipeline.Processor
	cache       *redis.Cache
	broadcaster Broadcaster
	logger      *logger.Logger
}

// NewRefreshJob creates the refresh job for the tracked codes.
func NewRefreshJob(
	codes []string,
	schedule string,
	fetcher *naver.Client,
	st *store.Store,
	processor *pipeline.Processor,
	cache *redis.Cache,
	broadcaster Broadcaster,
	log *logger.Logger,
) *RefreshJob {
	return &RefreshJob{
		codes:       codes,
		schedule:    schedule,
		fetcher:     fetcher,
		store:       st,
		processor:   processor,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      log.WithField("job", "series_refresh"),
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return "series_refresh"
}

// Schedule returns the cron expression.
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every tracked code. One failing code does not stop the
// rest; the job fails when any code failed.
func (j *RefreshJob) Run(ctx context.Context) error {
	if len(j.codes) == 0 {
		j.logger.Warn("No tracked codes configured, nothing to refresh")
		return nil
	}

	to := time.Now()
	from := to.AddDate(0, 0, -refreshWindowDays)

	failed := 0
	for _, code := range j.codes {
		if err := j.refreshCode(ctx, code, from, to); err != nil {
			j.logger.WithError(err).WithField("code", code).Error("Failed to refresh code")
			failed++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"codes":  len(j.codes),
		"failed": failed,
	}).Info("Refresh run completed")

	if failed > 0 {
		return fmt.Errorf("refresh failed for %d of %d codes", failed, len(j.codes))
	}
	return nil
}

// refreshCode runs fetch → store → recompute → broadcast for one code.
func (j *RefreshJob) refreshCode(ctx context.Context, code string, from, to time.Time) error {
	prices, err := j.fetcher.FetchPrices(ctx, code, from, to)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	flows, err := j.fetcher.FetchInvestorFlow(ctx, code, from, to)
	if err != nil {
		return fmt.Errorf("fetch investor flow: %w", err)
	}

	if err := j.store.Prices.SaveBatch(ctx, code, prices); err != nil {
		return fmt.Errorf("save prices: %w", err)
	}
	if err := j.store.Flows.SaveBatch(ctx, code, flows); err != nil {
		return fmt.Errorf("save investor flow: %w", err)
	}

	// recompute over the full stored history, not just this window
	storedPrices, err := j.store.Prices.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	storedFlows, err := j.store.Flows.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("load investor flow: %w", err)
	}

	res := j.processor.ProcessRecords(storedPrices, storedFlows, pipeline.Options{})
	analysis := j.processor.Analyze(res.Series, -1)

	snapshot := map[string]interface{}{
		"code":     code,
		"result":   res,
		"analysis": analysis,
	}
	if err := j.cache.Set(ctx, redis.DashboardKey(code, 0), snapshot, redis.TTLDaily); err != nil {
		j.logger.WithError(err).WithField("code", code).Warn("Failed to cache snapshot")
	}

	if j.broadcaster != nil {
		j.broadcaster.Broadcast("series.refreshed", code, analysis)
	}

	j.logger.WithFields(map[string]interface{}{
		"code":   code,
		"prices": len(prices),
		"flows":  len(flows),
		"bars":   len(res.Series),
	}).Debug("Code refreshed")

	return nil
}
