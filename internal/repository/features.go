package repository

import (
	"context"
	"fmt"

	"soccer_v3/pipeline/internal/models"
)

// FeatureRepository handles soccer_v1_features database operations
type FeatureRepository struct {
	db *Database
}

// Create inserts one feature row
func (r *FeatureRepository) Create(ctx context.Context, f *models.FeatureRow) error {
	if f == nil {
		return fmt.Errorf("feature row cannot be nil")
	}
	if f.MatchID <= 0 {
		return fmt.Errorf("match_id must be positive")
	}

	query := `
		INSERT INTO soccer_v1_features (
			match_id, ctmcl, avg_goals_market,
			pre_match_home_ppg, pre_match_away_ppg, home_form_points, away_form_points,
			home_xg_avg, away_xg_avg, home_xg_momentum, away_xg_momentum,
			home_goals_conceded_avg, away_goals_conceded_avg,
			home_shots_accuracy_avg, away_shots_accuracy_avg,
			home_dangerous_attacks_avg, away_dangerous_attacks_avg,
			h2h_total_goals_avg, league_avg_goals,
			home_elo, away_elo, elo_diff,
			odds_ft_1_prob, odds_ft_2_prob, btts_potential,
			o05_potential, o15_potential, o25_potential, o35_potential, o45_potential
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		f.MatchID, f.CTMCL, f.AvgGoalsMarket,
		f.PreMatchHomePPG, f.PreMatchAwayPPG, f.HomeFormPoints, f.AwayFormPoints,
		f.HomeXGAvg, f.AwayXGAvg, f.HomeXGMomentum, f.AwayXGMomentum,
		f.HomeGoalsConcededAvg, f.AwayGoalsConcededAvg,
		f.HomeShotsAccuracyAvg, f.AwayShotsAccuracyAvg,
		f.HomeDangerousAttacksAvg, f.AwayDangerousAttacksAvg,
		f.H2HTotalGoalsAvg, f.LeagueAvgGoals,
		f.HomeElo, f.AwayElo, f.EloDiff,
		f.OddsFT1Prob, f.OddsFT2Prob, f.BTTSPotential,
		f.O05Potential, f.O15Potential, f.O25Potential, f.O35Potential, f.O45Potential,
	)

	if err != nil {
		return fmt.Errorf("failed to create feature row: %w", err)
	}

	return nil
}

// ExistingMatchIDs returns the set of match IDs already in the table
func (r *FeatureRepository) ExistingMatchIDs(ctx context.Context) (map[int]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT match_id FROM soccer_v1_features`)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing match ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match ids: %w", err)
	}

	return ids, nil
}

// Count returns the total number of feature rows
func (r *FeatureRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM soccer_v1_features`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feature rows: %w", err)
	}

	return count, nil
}
