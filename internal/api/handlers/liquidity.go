package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/internal/liquidity"
	"github.com/sjkim/vega/pkg/logger"
)

// LiquidityHandler handles option-tradability checks
type LiquidityHandler struct {
	scorer *liquidity.Scorer
	logger *logger.Logger
}

// NewLiquidityHandler creates a new liquidity handler
func NewLiquidityHandler(scorer *liquidity.Scorer, log *logger.Logger) *LiquidityHandler {
	return &LiquidityHandler{
		scorer: scorer,
		logger: log,
	}
}

// LiquidityCheckRequest carries the legs of a candidate strategy.
type LiquidityCheckRequest struct {
	Legs []contracts.OptionQuote `json:"legs"`
}

// Check scores the tradability of the submitted legs
// POST /api/liquidity/check
func (h *LiquidityHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req LiquidityCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Legs) == 0 {
		respondError(w, http.StatusBadRequest, "No legs supplied")
		return
	}

	result := h.scorer.ScoreStrategyLegs(req.Legs)

	h.logger.WithFields(map[string]interface{}{
		"legs":       len(req.Legs),
		"all_liquid": result.AllLiquid,
		"min_score":  result.MinScore,
	}).Debug("Liquidity check")

	respondJSON(w, http.StatusOK, result)
}
