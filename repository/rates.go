package repository

import (
	"context"
	"fmt"

	"tennis_club_backend/models"
)

type rateRepository struct {
	q dbtx
}

// FindRates returns the coach's rates at the club in creation order.
func (r *rateRepository) FindRates(ctx context.Context, coachID, clubID int) ([]models.CoachingRate, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, coach_id, club_id, name, rate_type, hourly_rate
		FROM coaching_rates
		WHERE coach_id = $1 AND club_id = $2
		ORDER BY id
	`, coachID, clubID)
	if err != nil {
		return nil, fmt.Errorf("error fetching coaching rates: %w", err)
	}
	defer rows.Close()

	var rates []models.CoachingRate
	for rows.Next() {
		var rate models.CoachingRate
		if err := rows.Scan(
			&rate.ID,
			&rate.CoachID,
			&rate.ClubID,
			&rate.Name,
			&rate.RateType,
			&rate.HourlyRate,
		); err != nil {
			return nil, fmt.Errorf("error scanning coaching rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading coaching rates: %w", err)
	}
	return rates, nil
}
