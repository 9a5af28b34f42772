package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/internal/scoring"
	"github.com/sjkim/vega/pkg/logger"
)

// ScoreHandler handles ad-hoc scoring previews, used to sanity-check a
// config against candidate tickers without running a full backtest.
type ScoreHandler struct {
	logger *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{logger: log}
}

// PreviewCandidate is one ticker to score
type PreviewCandidate struct {
	Ticker       string   `json:"ticker"`
	EarningsDate string   `json:"earnings_date"` // YYYY-MM-DD
	VRPRatio     float64  `json:"vrp_ratio"`
	Consistency  float64  `json:"consistency"`
	Skew         *float64 `json:"skew,omitempty"`
	OpenInterest *int64   `json:"open_interest,omitempty"`
	SpreadPct    *float64 `json:"spread_pct,omitempty"`
	Volume       *int64   `json:"volume,omitempty"`
}

// PreviewRequest represents a scoring preview request
type PreviewRequest struct {
	Profile      string             `json:"profile"`
	MinScore     float64            `json:"min_score,omitempty"`
	MaxPositions int                `json:"max_positions,omitempty"`
	Candidates   []PreviewCandidate `json:"candidates"`
}

// Preview scores and ranks the submitted candidates
// POST /api/score/preview
func (h *ScoreHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Candidates) == 0 {
		respondError(w, http.StatusBadRequest, "No candidates supplied")
		return
	}

	cfg := configForRequest(RunRequest{
		Profile:      req.Profile,
		MinScore:     req.MinScore,
		MaxPositions: req.MaxPositions,
	})

	scorer := scoring.NewTickerScorer(cfg, h.logger)
	ranker := scoring.NewRanker(cfg, h.logger)

	inputs := make([]scoring.Inputs, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		date, err := time.Parse("2006-01-02", c.EarningsDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'earnings_date' for "+c.Ticker+" (expected YYYY-MM-DD)")
			return
		}
		inputs = append(inputs, scoring.Inputs{
			Ticker:       c.Ticker,
			EarningsDate: date,
			VRPRatio:     c.VRPRatio,
			Consistency:  c.Consistency,
			Skew:         c.Skew,
			OpenInterest: c.OpenInterest,
			SpreadPct:    c.SpreadPct,
			Volume:       c.Volume,
		})
	}

	scored := make([]contracts.TickerScore, 0, len(inputs))
	for _, in := range inputs {
		scored = append(scored, scorer.Score(in))
	}
	ranked := ranker.RankAndSelect(scored)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profile":   cfg.Profile,
		"qualified": len(ranked),
		"scores":    ranked,
	})
}
