package contracts

import "errors"

// Error taxonomy shared across the scoring and backtest packages.
//
// All three are recovered per ticker or per window (skip-and-continue,
// with the skip counted on the result); configuration errors fail fast
// before any simulation starts (see scoring.ValidationError).
var (
	// ErrDataInsufficient signals too few historical quarters or samples.
	ErrDataInsufficient = errors.New("insufficient historical data")

	// ErrCalculationDegenerate signals a zero-variance series feeding a ratio.
	ErrCalculationDegenerate = errors.New("degenerate calculation input")

	// ErrExternalUnavailable signals a missing table or unreachable store.
	ErrExternalUnavailable = errors.New("external data source unavailable")
)
