package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DH-11027/paradise/internal/pipeline"
	"github.com/DH-11027/paradise/internal/series"
	"github.com/DH-11027/paradise/pkg/logger"
)

// DashboardHandler serves the upload-driven analysis endpoints.
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type DashboardHandler struct {
	processor *pipeline.Processor
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(processor *pipeline.Processor, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		processor: processor,
		logger:    log,
	}
}

// DashboardRequest carries the raw CSV uploads and pipeline options.
type DashboardRequest struct {
	PriceCSV    string `json:"priceCsv"`
	FlowCSV     string `json:"flowCsv"`
	AnchorIndex int    `json:"anchorIndex"`
	UnitMode    string `json:"unitMode"` // "", "auto", "currency", "shares"
}

// DashboardResponse is the full enriched series plus the latest-bar
// signal readout.
type DashboardResponse struct {
	*pipeline.Result
	Analysis *pipeline.Analysis `json:"analysis"`
}

// Analyze processes uploaded CSVs into the enriched series and signals.
// POST /api/dashboard
func (h *DashboardHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req DashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PriceCSV == "" {
		respondError(w, http.StatusBadRequest, "priceCsv is required")
		return
	}

	res := h.processor.Process(req.PriceCSV, req.FlowCSV, pipeline.Options{
		AnchorIndex: req.AnchorIndex,
		Flow:        series.FlowOptions{Unit: series.UnitMode(req.UnitMode)},
	})

	h.logger.WithFields(map[string]interface{}{
		"bars":       len(res.Series),
		"flowSource": res.Reports.FlowSource,
	}).Info("Dashboard analysis computed")

	respondJSON(w, http.StatusOK, DashboardResponse{
		Result:   res,
		Analysis: h.processor.Analyze(res.Series, -1),
	})
}

// BacktestRequest carries the uploads plus the simulation lookback.
type BacktestRequest struct {
	PriceCSV string `json:"priceCsv"`
	FlowCSV  string `json:"flowCsv"`
	Lookback int    `json:"lookback"`
	UnitMode string `json:"unitMode"`
}

// Backtest runs the walk-forward simulation over uploaded CSVs.
// POST /api/backtest
func (h *DashboardHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PriceCSV == "" {
		respondError(w, http.StatusBadRequest, "priceCsv is required")
		return
	}

	res := h.processor.Process(req.PriceCSV, req.FlowCSV, pipeline.Options{
		Flow: series.FlowOptions{Unit: series.UnitMode(req.UnitMode)},
	})

	result := h.processor.Backtest(res.Series, req.Lookback)
	if result == nil {
		respondError(w, http.StatusUnprocessableEntity, "Not enough bars to backtest")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
