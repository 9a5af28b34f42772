package sizing

// AllocatePortfolio caps total exposure across positions. When the sum
// of position sizes exceeds the cap, every position is scaled down
// proportionally to exactly meet it; nothing is ever dropped, so the
// relative ordering and proportions between positions are preserved.
func AllocatePortfolio(positions []PositionSize, maxTotalExposurePct float64) []PositionSize {
	total := TotalExposurePct(positions)
	if total <= maxTotalExposurePct || total == 0 {
		return positions
	}

	scale := maxTotalExposurePct / total
	scaled := make([]PositionSize, len(positions))
	for i, p := range positions {
		p.PositionSizePct *= scale
		p.RecommendedFraction *= scale
		p.MaxLossPct *= scale
		p.RiskAdjusted = true
		scaled[i] = p
	}

	return scaled
}

// TotalExposurePct sums the position sizes of a portfolio.
func TotalExposurePct(positions []PositionSize) float64 {
	total := 0.0
	for _, p := range positions {
		total += p.PositionSizePct
	}
	return total
}
