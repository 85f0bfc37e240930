package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
)

// featureColumns are the CSV columns carried into soccer_v1_features. The
// CSV headers double as column names, except CTMCL which the table stores
// lowercase.
var featureColumns = []string{
	"CTMCL",
	"avg_goals_market",
	"pre_match_home_ppg",
	"pre_match_away_ppg",
	"home_xg_avg",
	"away_xg_avg",
	"home_xg_momentum",
	"away_xg_momentum",
	"home_goals_conceded_avg",
	"away_goals_conceded_avg",
	"o25_potential",
	"o35_potential",
	"home_shots_accuracy_avg",
	"away_shots_accuracy_avg",
	"home_dangerous_attacks_avg",
	"away_dangerous_attacks_avg",
	"h2h_total_goals_avg",
	"home_form_points",
	"away_form_points",
	"home_elo",
	"away_elo",
	"elo_diff",
	"league_avg_goals",
	"odds_ft_1_prob",
	"odds_ft_2_prob",
	"btts_potential",
	"o05_potential",
	"o15_potential",
	"o45_potential",
}

// Features loads the feature-vector CSV into soccer_v1_features. Matches
// already in the table are skipped; a missing column aborts, a bad row does
// not.
func Features(ctx context.Context, db *repository.Database, path string) (*Summary, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(append([]string{"match_id"}, featureColumns...)...); err != nil {
		return nil, err
	}

	existing, err := db.Features.ExistingMatchIDs(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Total: len(t.records)}
	for _, record := range t.records {
		matchID, err := t.matchID(record)
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Msg("Skipping feature row without match_id")
			continue
		}
		if _, ok := existing[matchID]; ok {
			sum.Skipped++
			continue
		}

		if err := db.Features.Create(ctx, featureRow(t, record, matchID)); err != nil {
			sum.Failed++
			log.Warn().Err(err).Int("match_id", matchID).Msg("Failed to insert feature row")
			continue
		}
		sum.Inserted++
	}

	metrics.RecordInsert("soccer_v1_features", sum.Inserted)
	log.Info().
		Str("file", path).
		Int("total", sum.Total).
		Int("inserted", sum.Inserted).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("Feature ingest complete")

	return sum, nil
}

func featureRow(t *table, record []string, matchID int) *models.FeatureRow {
	return &models.FeatureRow{
		MatchID:                 matchID,
		CTMCL:                   nullFloat(t.floatCell(record, "CTMCL")),
		AvgGoalsMarket:          nullFloat(t.floatCell(record, "avg_goals_market")),
		PreMatchHomePPG:         nullFloat(t.floatCell(record, "pre_match_home_ppg")),
		PreMatchAwayPPG:         nullFloat(t.floatCell(record, "pre_match_away_ppg")),
		HomeFormPoints:          nullFloat(t.floatCell(record, "home_form_points")),
		AwayFormPoints:          nullFloat(t.floatCell(record, "away_form_points")),
		HomeXGAvg:               nullFloat(t.floatCell(record, "home_xg_avg")),
		AwayXGAvg:               nullFloat(t.floatCell(record, "away_xg_avg")),
		HomeXGMomentum:          nullFloat(t.floatCell(record, "home_xg_momentum")),
		AwayXGMomentum:          nullFloat(t.floatCell(record, "away_xg_momentum")),
		HomeGoalsConcededAvg:    nullFloat(t.floatCell(record, "home_goals_conceded_avg")),
		AwayGoalsConcededAvg:    nullFloat(t.floatCell(record, "away_goals_conceded_avg")),
		HomeShotsAccuracyAvg:    nullFloat(t.floatCell(record, "home_shots_accuracy_avg")),
		AwayShotsAccuracyAvg:    nullFloat(t.floatCell(record, "away_shots_accuracy_avg")),
		HomeDangerousAttacksAvg: nullFloat(t.floatCell(record, "home_dangerous_attacks_avg")),
		AwayDangerousAttacksAvg: nullFloat(t.floatCell(record, "away_dangerous_attacks_avg")),
		H2HTotalGoalsAvg:        nullFloat(t.floatCell(record, "h2h_total_goals_avg")),
		LeagueAvgGoals:          nullFloat(t.floatCell(record, "league_avg_goals")),
		HomeElo:                 nullFloat(t.floatCell(record, "home_elo")),
		AwayElo:                 nullFloat(t.floatCell(record, "away_elo")),
		EloDiff:                 nullFloat(t.floatCell(record, "elo_diff")),
		OddsFT1Prob:             nullFloat(t.floatCell(record, "odds_ft_1_prob")),
		OddsFT2Prob:             nullFloat(t.floatCell(record, "odds_ft_2_prob")),
		BTTSPotential:           nullFloat(t.floatCell(record, "btts_potential")),
		O05Potential:            nullFloat(t.floatCell(record, "o05_potential")),
		O15Potential:            nullFloat(t.floatCell(record, "o15_potential")),
		O25Potential:            nullFloat(t.floatCell(record, "o25_potential")),
		O35Potential:            nullFloat(t.floatCell(record, "o35_potential")),
		O45Potential:            nullFloat(t.floatCell(record, "o45_potential")),
	}
}
