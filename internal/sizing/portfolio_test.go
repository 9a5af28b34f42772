package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatePortfolio_UnderCapUntouched(t *testing.T) {
	positions := []PositionSize{
		{Ticker: "A", PositionSizePct: 5},
		{Ticker: "B", PositionSizePct: 8},
	}

	result := AllocatePortfolio(positions, 20)

	assert.Equal(t, positions, result)
	assert.InDelta(t, 13.0, TotalExposurePct(result), 0.001)
}

func TestAllocatePortfolio_ScalesProportionally(t *testing.T) {
	positions := []PositionSize{
		{Ticker: "A", PositionSizePct: 10, RecommendedFraction: 0.10, MaxLossPct: 5},
		{Ticker: "B", PositionSizePct: 20, RecommendedFraction: 0.20, MaxLossPct: 10},
		{Ticker: "C", PositionSizePct: 10, RecommendedFraction: 0.10, MaxLossPct: 5},
	}

	result := AllocatePortfolio(positions, 20)

	require.Len(t, result, 3, "nothing is dropped")
	assert.InDelta(t, 20.0, TotalExposurePct(result), 0.001, "total lands exactly on the cap")

	// 2:1 proportions survive the scaling
	assert.InDelta(t, 5.0, result[0].PositionSizePct, 0.001)
	assert.InDelta(t, 10.0, result[1].PositionSizePct, 0.001)
	assert.InDelta(t, 5.0, result[2].PositionSizePct, 0.001)

	for _, p := range result {
		assert.True(t, p.RiskAdjusted)
	}

	// The fraction and stress-loss bookkeeping scale with the size.
	assert.InDelta(t, 0.05, result[0].RecommendedFraction, 0.001)
	assert.InDelta(t, 2.5, result[0].MaxLossPct, 0.001)
}

func TestAllocatePortfolio_Empty(t *testing.T) {
	assert.Empty(t, AllocatePortfolio(nil, 20))
	assert.Zero(t, TotalExposurePct(nil))
}
