package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/models"
)

// StatsRepository computes daily performance statistics over settled
// agility_soccer_v1 rows
type StatsRepository struct {
	db *Database
}

// DailyStats aggregates one date's settled predictions: profit/loss totals,
// hit counts for both markets, and the per-confidence-category breakdown.
// A winner prediction counts as correct when the label resolves to the team
// name stored in actual_winner (or both say Draw).
func (r *StatsRepository) DailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	stats := &models.DailyStats{Date: date}

	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(profit_loss_outcome), 0),
		       COALESCE(SUM(profit_loss_winner), 0),
		       COALESCE(AVG(profit_loss_outcome), 0),
		       COALESCE(AVG(profit_loss_winner), 0)
		FROM agility_soccer_v1
		WHERE date = $1 AND actual_winner IS NOT NULL
	`, date).Scan(
		&stats.SettledCount,
		&stats.OutcomeProfitSum, &stats.WinnerProfitSum,
		&stats.OutcomeProfitAvg, &stats.WinnerProfitAvg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily profit stats: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE
		           WHEN predicted_outcome = actual_over_under THEN 1
		           ELSE 0
		       END), 0),
		       COALESCE(SUM(CASE
		           WHEN (predicted_winner = 'Home Win' AND actual_winner = home_team) OR
		                (predicted_winner = 'Away Win' AND actual_winner = away_team) OR
		                (predicted_winner = 'Draw' AND actual_winner = 'Draw')
		           THEN 1
		           ELSE 0
		       END), 0)
		FROM agility_soccer_v1
		WHERE date = $1 AND actual_winner IS NOT NULL
	`, date).Scan(&stats.CorrectOverUnder, &stats.CorrectWinner)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily accuracy stats: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT confidence_category,
		       COUNT(*),
		       COALESCE(SUM(CASE
		           WHEN predicted_outcome = actual_over_under THEN 1
		           ELSE 0
		       END), 0),
		       COALESCE(SUM(CASE
		           WHEN (predicted_winner = 'Home Win' AND actual_winner = home_team) OR
		                (predicted_winner = 'Away Win' AND actual_winner = away_team) OR
		                (predicted_winner = 'Draw' AND actual_winner = 'Draw')
		           THEN 1
		           ELSE 0
		       END), 0),
		       COALESCE(SUM(profit_loss_outcome), 0),
		       COALESCE(SUM(profit_loss_winner), 0)
		FROM agility_soccer_v1
		WHERE date = $1 AND actual_winner IS NOT NULL
		GROUP BY confidence_category
		ORDER BY
		    CASE confidence_category
		        WHEN 'High' THEN 1
		        WHEN 'Medium' THEN 2
		        WHEN 'Low' THEN 3
		        ELSE 4
		    END
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category sql.NullString
		var cat models.CategoryStats
		err := rows.Scan(
			&category, &cat.SettledCount,
			&cat.CorrectOverUnder, &cat.CorrectWinner,
			&cat.OutcomeProfitSum, &cat.WinnerProfitSum,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		cat.Category = category.String
		stats.Categories = append(stats.Categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category stats: %w", err)
	}

	log.Debug().
		Str("date", date).
		Int("settled", stats.SettledCount).
		Msg("Computed daily stats")

	return stats, nil
}
