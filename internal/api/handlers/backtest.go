package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sjkim/vega/internal/backtest"
	"github.com/sjkim/vega/internal/scoring"
	"github.com/sjkim/vega/pkg/logger"
)

// BacktestHandler handles backtest API endpoints
type BacktestHandler struct {
	engine *backtest.Engine
	repo   *backtest.Repository
	logger *logger.Logger
}

// NewBacktestHandler creates a new backtest handler. repo may be nil;
// results are then returned but not persisted.
func NewBacktestHandler(engine *backtest.Engine, repo *backtest.Repository, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		engine: engine,
		repo:   repo,
		logger: log,
	}
}

// RunRequest represents a backtest run request
type RunRequest struct {
	Profile      string  `json:"profile"` // conservative|balanced|aggressive|legacy
	From         string  `json:"from"`    // YYYY-MM-DD
	To           string  `json:"to"`      // YYYY-MM-DD
	Realistic    bool    `json:"realistic"`
	DollarMode   bool    `json:"dollar_mode"`
	TotalCapital float64 `json:"total_capital"`
	MinScore     float64 `json:"min_score,omitempty"`
	MaxPositions int     `json:"max_positions,omitempty"`
}

// Run executes a backtest over the requested date range
// POST /api/backtest/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, to, ok := parseDateRange(w, req.From, req.To)
	if !ok {
		return
	}

	cfg := configForRequest(req)

	h.logger.WithFields(map[string]interface{}{
		"profile": cfg.Profile,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
	}).Info("Backtest triggered")

	result, err := h.engine.Run(ctx, cfg, backtest.RunOptions{
		StartDate:         from,
		EndDate:           to,
		UseRealisticModel: req.Realistic,
		DollarMode:        req.DollarMode,
		TotalCapital:      req.TotalCapital,
	})
	if err != nil {
		h.logger.WithError(err).Error("Backtest run failed")
		respondError(w, http.StatusInternalServerError, "Backtest run failed")
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveResult(ctx, result); err != nil {
			h.logger.WithError(err).Warn("Failed to persist backtest result")
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// WalkForwardRequest represents a walk-forward validation request
type WalkForwardRequest struct {
	Profiles     []string `json:"profiles"` // candidate profiles; empty means all four
	From         string   `json:"from"`
	To           string   `json:"to"`
	TrainDays    int      `json:"train_days"`
	TestDays     int      `json:"test_days"`
	StepDays     int      `json:"step_days"`
	Realistic    bool     `json:"realistic"`
	DollarMode   bool     `json:"dollar_mode"`
	TotalCapital float64  `json:"total_capital"`
}

// WalkForward executes a walk-forward validation sweep
// POST /api/backtest/walkforward
func (h *BacktestHandler) WalkForward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req WalkForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, to, ok := parseDateRange(w, req.From, req.To)
	if !ok {
		return
	}

	profiles := req.Profiles
	if len(profiles) == 0 {
		profiles = []string{"conservative", "balanced", "aggressive", "legacy"}
	}

	configs := make([]scoring.Config, 0, len(profiles))
	for _, name := range profiles {
		if _, known := scoring.ParseProfile(name); !known {
			respondError(w, http.StatusBadRequest, "Unknown profile: "+name)
			return
		}
		configs = append(configs, configForRequest(RunRequest{Profile: name}))
	}

	opts := backtest.WalkForwardOptions{
		StartDate:         from,
		EndDate:           to,
		TrainWindowDays:   req.TrainDays,
		TestWindowDays:    req.TestDays,
		StepDays:          req.StepDays,
		UseRealisticModel: req.Realistic,
		DollarMode:        req.DollarMode,
		TotalCapital:      req.TotalCapital,
	}
	if opts.TrainWindowDays <= 0 {
		opts.TrainWindowDays = 180
	}
	if opts.TestWindowDays <= 0 {
		opts.TestWindowDays = 90
	}
	if opts.StepDays <= 0 {
		opts.StepDays = 90
	}

	h.logger.WithFields(map[string]interface{}{
		"profiles": profiles,
		"from":     from.Format("2006-01-02"),
		"to":       to.Format("2006-01-02"),
	}).Info("Walk-forward validation triggered")

	result, err := h.engine.RunWalkForward(ctx, configs, opts)
	if err != nil {
		h.logger.WithError(err).Error("Walk-forward validation failed")
		respondError(w, http.StatusInternalServerError, "Walk-forward validation failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Results returns the most recent persisted backtest runs
// GET /api/backtest/results?limit=10
func (h *BacktestHandler) Results(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Result persistence is not configured")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected 1-100)")
			return
		}
		limit = n
	}

	results, err := h.repo.LatestResults(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load backtest results")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve results")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// configForRequest builds a scoring config from a run request. Unknown
// profile names fall back to balanced, matching the loader.
func configForRequest(req RunRequest) scoring.Config {
	profile, _ := scoring.ParseProfile(req.Profile)

	cfg := scoring.DefaultConfig()
	cfg.Name = string(profile)
	cfg.Profile = string(profile)
	cfg.Thresholds = profile.Thresholds()

	if req.MinScore > 0 {
		cfg.MinScore = req.MinScore
	}
	if req.MaxPositions > 0 {
		cfg.MaxPositions = req.MaxPositions
	}

	return cfg
}

func parseDateRange(w http.ResponseWriter, fromStr, toStr string) (time.Time, time.Time, bool) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
		return time.Time{}, time.Time{}, false
	}

	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
		return time.Time{}, time.Time{}, false
	}

	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "'to' must not be before 'from'")
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
