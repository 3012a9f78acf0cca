package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/DH-11027/paradise/internal/external/naver"
	"github.com/DH-11027/paradise/internal/pipeline"
	"github.com/DH-11027/paradise/internal/store"
	"github.com/DH-11027/paradise/pkg/logger"
	"github.com/DH-11027/paradise/pkg/redis"
)

// Broadcaster pushes refreshed snapshots to websocket clients.
type Broadcaster interface {
	Broadcast(eventType, code string, data interface{})
}

// SeriesHandler serves stored series and triggers refreshes.
// ⭐ SSOT: 종목 시리즈 API 핸들러는 이 구조체에서만
type SeriesHandler struct {
	store       *store.Store
	fetcher     *naver.Client
	processor   *pipeline.Processor
	cache       *redis.Cache
	broadcaster Broadcaster
	logger      *logger.Logger
}

// NewSeriesHandler creates a new series handler. store and fetcher may
// be nil when persistence or fetching is disabled; the endpoints then
// answer 503.
func NewSeriesHandler(
	st *store.Store,
	fetcher *naver.Client,
	processor *pipeline.Processor,
	cache *redis.Cache,
	broadcaster Broadcaster,
	log *logger.Logger,
) *SeriesHandler {
	return &SeriesHandler{
		store:       st,
		fetcher:     fetcher,
		processor:   processor,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// SeriesResponse is a stored series with its latest-bar analysis.
type SeriesResponse struct {
	Code     string             `json:"code"`
	Series   *pipeline.Result   `json:"result"`
	Analysis *pipeline.Analysis `json:"analysis"`
}

// Get serves a previously stored series without a fresh upload.
// GET /api/series/{code}?anchor=N
func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is disabled")
		return
	}

	ctx := r.Context()
	code := mux.Vars(r)["code"]
	anchor, _ := strconv.Atoi(r.URL.Query().Get("anchor"))

	var cached SeriesResponse
	if hit, err := h.cache.Get(ctx, redis.DashboardKey(code, anchor), &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	resp, err := h.buildSeries(r, code, anchor)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to load series")
		respondError(w, http.StatusInternalServerError, "Failed to load series")
		return
	}
	if len(resp.Series.Series) == 0 {
		respondError(w, http.StatusNotFound, "No stored series for code")
		return
	}

	if err := h.cache.Set(ctx, redis.DashboardKey(code, anchor), resp, redis.TTLMedium); err != nil {
		h.logger.WithError(err).Warn("Failed to cache series snapshot")
	}

	respondJSON(w, http.StatusOK, resp)
}

// RefreshRequest tunes one refresh run.
type RefreshRequest struct {
	Days int `json:"days"`
}

// Refresh fetches the latest data for a code, stores it, recomputes the
// analysis and broadcasts the new snapshot.
// POST /api/series/{code}/refresh
func (h *SeriesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.fetcher == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence or fetching is disabled")
		return
	}

	ctx := r.Context()
	code := mux.Vars(r)["code"]

	days := 365
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	prices, err := h.fetcher.FetchPrices(ctx, code, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to fetch prices")
		respondError(w, http.StatusBadGateway, "Failed to fetch prices")
		return
	}
	flows, err := h.fetcher.FetchInvestorFlow(ctx, code, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to fetch investor flow")
		respondError(w, http.StatusBadGateway, "Failed to fetch investor flow")
		return
	}

	if err := h.store.Prices.SaveBatch(ctx, code, prices); err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to save prices")
		respondError(w, http.StatusInternalServerError, "Failed to save prices")
		return
	}
	if err := h.store.Flows.SaveBatch(ctx, code, flows); err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to save investor flow")
		respondError(w, http.StatusInternalServerError, "Failed to save investor flow")
		return
	}

	resp, err := h.buildSeries(r, code, 0)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to rebuild series")
		respondError(w, http.StatusInternalServerError, "Failed to rebuild series")
		return
	}

	if err := h.cache.Set(ctx, redis.DashboardKey(code, 0), resp, redis.TTLMedium); err != nil {
		h.logger.WithError(err).Warn("Failed to cache refreshed snapshot")
	}
	if h.broadcaster != nil {
		h.broadcaster.Broadcast("series.refreshed", code, resp.Analysis)
	}

	h.logger.WithFields(map[string]interface{}{
		"code":   code,
		"prices": len(prices),
		"flows":  len(flows),
	}).Info("Series refreshed")

	respondJSON(w, http.StatusOK, resp)
}

// buildSeries loads the stored records and runs the pipeline over them.
func (h *SeriesHandler) buildSeries(r *http.Request, code string, anchor int) (*SeriesResponse, error) {
	ctx := r.Context()

	prices, err := h.store.Prices.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	flows, err := h.store.Flows.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	res := h.processor.ProcessRecords(prices, flows, pipeline.Options{AnchorIndex: anchor})
	return &SeriesResponse{
		Code:     code,
		Series:   res,
		Analysis: h.processor.Analyze(res.Series, -1),
	}, nil
}
