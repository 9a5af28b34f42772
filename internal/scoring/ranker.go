package scoring

import (
	"sort"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/pkg/logger"
)

// Ranker qualifies, orders and selects scored events.
type Ranker struct {
	minScore     float64
	maxPositions int
	logger       *logger.Logger
}

// NewRanker creates a ranker from a resolved config.
func NewRanker(cfg Config, log *logger.Logger) *Ranker {
	return &Ranker{
		minScore:     cfg.MinScore,
		maxPositions: cfg.MaxPositions,
		logger:       log,
	}
}

// RankAndSelect filters scores below the qualification floor, orders the
// rest by descending composite, assigns dense ranks 1..K and marks the
// top max_positions as selected.
//
// Ties break on ticker then earnings date so repeated runs over the same
// data always produce the same ranking.
func (r *Ranker) RankAndSelect(scores []contracts.TickerScore) []contracts.TickerScore {
	qualified := make([]contracts.TickerScore, 0, len(scores))
	for _, s := range scores {
		if s.CompositeScore >= r.minScore {
			qualified = append(qualified, s)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		a, b := qualified[i], qualified[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		return a.EarningsDate.Before(b.EarningsDate)
	})

	for i := range qualified {
		rank := i + 1
		qualified[i].Rank = &rank
		qualified[i].Selected = rank <= r.maxPositions
	}

	r.logger.WithFields(map[string]interface{}{
		"scored":    len(scores),
		"qualified": len(qualified),
		"selected":  minInt(r.maxPositions, len(qualified)),
	}).Debug("Ranking completed")

	return qualified
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
