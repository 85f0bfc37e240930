package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/predictor"
	"soccer_v3/pipeline/internal/repository"
)

// modelColumns are the columns the regression export must carry. Market
// context columns (odds, probabilities, potentials) are read when present
// and default to NULL otherwise.
var modelColumns = []string{
	"match_id", "date", "league_id",
	"home_team_name", "away_team_name",
	"predicted_home_goals", "predicted_away_goals",
}

// ModelPredictions runs the regression export through the derivation layer
// into one of the ourmodel tables. Existing match IDs are skipped so the
// grading and settlement columns they accumulated survive re-imports.
func ModelPredictions(ctx context.Context, db *repository.Database, table, path string) (*Summary, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(modelColumns...); err != nil {
		return nil, err
	}

	existing, err := db.ModelPredictions.ExistingMatchIDs(ctx, table)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Total: len(t.records)}
	for _, record := range t.records {
		matchID, err := t.matchID(record)
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Msg("Skipping model row without match_id")
			continue
		}
		if _, ok := existing[matchID]; ok {
			sum.Skipped++
			continue
		}

		mp := predictor.Derive(modelInput(t, record, matchID))
		if err := db.ModelPredictions.Create(ctx, table, mp); err != nil {
			sum.Failed++
			log.Warn().Err(err).Int("match_id", matchID).Msg("Failed to insert model prediction")
			continue
		}
		sum.Inserted++
	}

	metrics.RecordInsert(table, sum.Inserted)
	log.Info().
		Str("table", table).
		Str("file", path).
		Int("total", sum.Total).
		Int("inserted", sum.Inserted).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("Model ingest complete")

	return sum, nil
}

// ModelCleanup removes model rows whose match_id is absent from the export,
// the matches the upstream window dropped. Returns the number removed.
func ModelCleanup(ctx context.Context, db *repository.Database, table, path string) (int64, error) {
	t, err := readTable(path)
	if err != nil {
		return 0, err
	}
	if err := t.require("match_id"); err != nil {
		return 0, err
	}

	keep := make([]int, 0, len(t.records))
	for _, record := range t.records {
		matchID, err := t.matchID(record)
		if err != nil {
			continue
		}
		keep = append(keep, matchID)
	}

	return db.ModelPredictions.DeleteMissing(ctx, table, keep)
}

func modelInput(t *table, record []string, matchID int) *models.ModelInput {
	in := &models.ModelInput{
		MatchID:      matchID,
		Date:         t.cell(record, "date"),
		LeagueID:     t.cell(record, "league_id"),
		HomeTeamID:   t.intCell(record, "home_team_id"),
		AwayTeamID:   t.intCell(record, "away_team_id"),
		HomeTeamName: t.cell(record, "home_team_name"),
		AwayTeamName: t.cell(record, "away_team_name"),
		CTMCL:        t.floatCell(record, "CTMCL"),
		HomeOdds:     t.floatCell(record, "odds_ft_1"),
		AwayOdds:     t.floatCell(record, "odds_ft_2"),
		DrawOdds:     t.floatCell(record, "odds_ft_x"),
		OverOdds:     t.floatCell(record, "odds_ft_over25"),
		UnderOdds:    t.floatCell(record, "odds_ft_under25"),
		HomeWinProb:  t.floatCell(record, "odds_ft_1_prob"),
		AwayWinProb:  t.floatCell(record, "odds_ft_2_prob"),
		O25Potential: t.floatCell(record, "o25_potential"),
	}

	if v := t.floatCell(record, "predicted_home_goals"); v != nil {
		in.PredictedHomeGoals = *v
	}
	if v := t.floatCell(record, "predicted_away_goals"); v != nil {
		in.PredictedAwayGoals = *v
	}

	return in
}
