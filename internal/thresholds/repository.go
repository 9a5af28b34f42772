package thresholds

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sjkim/vega/internal/contracts"
)

// Repository reads VRP observations from the data schema owned by the
// upstream collection layer.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new threshold repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// VRPRatios returns all VRP ratios observed in [from, to].
func (r *Repository) VRPRatios(ctx context.Context, from, to time.Time) ([]float64, error) {
	query := `
		SELECT vrp_ratio
		FROM data.vrp_observations
		WHERE earnings_date >= $1
		  AND earnings_date <= $2
		ORDER BY earnings_date
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query vrp observations: %w: %v", contracts.ErrExternalUnavailable, err)
	}
	defer rows.Close()

	var ratios []float64
	for rows.Next() {
		var ratio float64
		if err := rows.Scan(&ratio); err != nil {
			return nil, fmt.Errorf("scan vrp observation: %w", err)
		}
		ratios = append(ratios, ratio)
	}

	return ratios, rows.Err()
}

// SectorVRPRatios returns VRP ratios for one sector in [from, to].
func (r *Repository) SectorVRPRatios(ctx context.Context, sector string, from, to time.Time) ([]float64, error) {
	query := `
		SELECT vrp_ratio
		FROM data.vrp_observations
		WHERE sector = $1
		  AND earnings_date >= $2
		  AND earnings_date <= $3
		ORDER BY earnings_date
	`

	rows, err := r.pool.Query(ctx, query, sector, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sector vrp observations: %w: %v", contracts.ErrExternalUnavailable, err)
	}
	defer rows.Close()

	var ratios []float64
	for rows.Next() {
		var ratio float64
		if err := rows.Scan(&ratio); err != nil {
			return nil, fmt.Errorf("scan sector vrp observation: %w", err)
		}
		ratios = append(ratios, ratio)
	}

	return ratios, rows.Err()
}
