package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sjkim/vega/internal/thresholds"
	"github.com/sjkim/vega/pkg/logger"
)

// ThresholdHandler handles rolling-threshold API endpoints
type ThresholdHandler struct {
	calc       *thresholds.Calculator
	windowDays int
	logger     *logger.Logger
}

// NewThresholdHandler creates a new threshold handler. windowDays is the
// default trailing window when the request does not specify one.
func NewThresholdHandler(calc *thresholds.Calculator, windowDays int, log *logger.Logger) *ThresholdHandler {
	return &ThresholdHandler{
		calc:       calc,
		windowDays: windowDays,
		logger:     log,
	}
}

// GetRolling returns global rolling VRP thresholds
// GET /api/thresholds/rolling?window=365&as_of=2026-08-28
func (h *ThresholdHandler) GetRolling(w http.ResponseWriter, r *http.Request) {
	windowDays, asOf, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	result := h.calc.Rolling(r.Context(), windowDays, asOf)
	respondJSON(w, http.StatusOK, result)
}

// GetSector returns sector-scoped rolling VRP thresholds
// GET /api/thresholds/sector/{sector}
func (h *ThresholdHandler) GetSector(w http.ResponseWriter, r *http.Request) {
	sector := mux.Vars(r)["sector"]
	if sector == "" {
		respondError(w, http.StatusBadRequest, "Missing sector")
		return
	}

	windowDays, asOf, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	result := h.calc.Sector(r.Context(), sector, windowDays, asOf)
	respondJSON(w, http.StatusOK, result)
}

func (h *ThresholdHandler) parseParams(w http.ResponseWriter, r *http.Request) (int, time.Time, bool) {
	windowDays := h.windowDays

	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'window' (expected positive days)")
			return 0, time.Time{}, false
		}
		windowDays = n
	}

	asOf := time.Now()
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'as_of' date format (expected YYYY-MM-DD)")
			return 0, time.Time{}, false
		}
		asOf = t
	}

	return windowDays, asOf, true
}
